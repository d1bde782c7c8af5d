package session

import (
	"errors"
	"sync"
	"time"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/bt"
)

// writtenValue records one characteristic write for inspection.
type writtenValue struct {
	ServiceUUID        string
	CharacteristicUUID string
	Data               []byte
	WithResponse       bool
}

// mockBTDevice implements bt.BTDevice without hardware. Notifications are
// injected by calling the registered callbacks directly.
type mockBTDevice struct {
	address      string
	localName    string
	serviceUUIDs []string
	discoverErr  error

	mu        sync.Mutex
	connected bool
	callbacks map[string]func([]byte) // characteristic UUID -> callback
	disabled  []string
	writes    []writtenValue
	reads     map[string][]byte
	writeErr  map[string]error // characteristic UUID -> forced error

	// onWrite, when set, runs after each recorded write. Used to simulate
	// a device acknowledging control point commands.
	onWrite func(char string, data []byte)
}

var _ bt.BTDevice = (*mockBTDevice)(nil)

func newMockBTDevice(name string, serviceUUIDs ...string) *mockBTDevice {
	return &mockBTDevice{
		address:      "AA:BB:CC:DD:EE:FF",
		localName:    name,
		serviceUUIDs: serviceUUIDs,
		callbacks:    make(map[string]func([]byte)),
		reads:        make(map[string][]byte),
		writeErr:     make(map[string]error),
	}
}

func (m *mockBTDevice) GetAddressString() string       { return m.address }
func (m *mockBTDevice) GetScanRSSI() (int16, error)    { return -60, nil }
func (m *mockBTDevice) GetScanLastSeen() time.Time     { return time.Now() }
func (m *mockBTDevice) SetScanLastSeen(time.Time)      {}
func (m *mockBTDevice) GetLocalName() string           { return m.localName }
func (m *mockBTDevice) IsRecentlyScanned() bool        { return true }
func (m *mockBTDevice) GetStateDescription() string    { return "Mock" }

func (m *mockBTDevice) GetState() bt.BTDeviceState {
	if m.IsConnected() {
		return bt.Connected
	}
	return bt.Disconnected
}

func (m *mockBTDevice) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockBTDevice) setConnected(connected bool) {
	m.mu.Lock()
	m.connected = connected
	m.mu.Unlock()
}

func (m *mockBTDevice) WaitForConnection(timeout time.Duration) error {
	if m.IsConnected() {
		return nil
	}
	return errors.New("mock: not connected")
}

func (m *mockBTDevice) DiscoverServices() ([]string, error) {
	if m.discoverErr != nil {
		return nil, m.discoverErr
	}
	return m.serviceUUIDs, nil
}

func (m *mockBTDevice) GetServiceUUIDs() []string { return m.serviceUUIDs }

func (m *mockBTDevice) HasServiceUUID(uuid string) bool {
	for _, u := range m.serviceUUIDs {
		if u == uuid {
			return true
		}
	}
	return false
}

func (m *mockBTDevice) EnableNotifications(serviceUuid, charUuid string, callback func([]byte)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks[charUuid] = callback
	return nil
}

func (m *mockBTDevice) DisableNotifications(serviceUuid, charUuid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.callbacks, charUuid)
	m.disabled = append(m.disabled, charUuid)
	return nil
}

// notify injects a notification as if the device had sent it.
func (m *mockBTDevice) notify(charUuid string, buf []byte) {
	m.mu.Lock()
	callback := m.callbacks[charUuid]
	m.mu.Unlock()
	if callback != nil {
		callback(buf)
	}
}

func (m *mockBTDevice) ReadCharacteristic(serviceUuid, charUuid string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf, ok := m.reads[charUuid]
	if !ok {
		return nil, errors.New("mock: characteristic not readable")
	}
	return buf, nil
}

func (m *mockBTDevice) WriteCharacteristic(serviceUuid, charUuid string, data []byte) error {
	return m.recordWrite(serviceUuid, charUuid, data, true)
}

func (m *mockBTDevice) WriteCharacteristicWithoutResponse(serviceUuid, charUuid string, data []byte) error {
	return m.recordWrite(serviceUuid, charUuid, data, false)
}

func (m *mockBTDevice) recordWrite(serviceUuid, charUuid string, data []byte, withResponse bool) error {
	m.mu.Lock()
	if err := m.writeErr[charUuid]; err != nil {
		m.mu.Unlock()
		return err
	}
	m.writes = append(m.writes, writtenValue{
		ServiceUUID:        serviceUuid,
		CharacteristicUUID: charUuid,
		Data:               append([]byte(nil), data...),
		WithResponse:       withResponse,
	})
	hook := m.onWrite
	m.mu.Unlock()

	if hook != nil {
		hook(charUuid, data)
	}
	return nil
}

func (m *mockBTDevice) writtenTo(charUuid string) []writtenValue {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []writtenValue
	for _, w := range m.writes {
		if w.CharacteristicUUID == charUuid {
			out = append(out, w)
		}
	}
	return out
}

// mockBTManager implements bt.BTManagerInterface over mock devices.
type mockBTManager struct {
	device        *mockBTDevice
	connectErr    error
	disconnects   int
}

var _ bt.BTManagerInterface = (*mockBTManager)(nil)

func (m *mockBTManager) Enable() error { return nil }

func (m *mockBTManager) GetBTDeviceByAddressString(address string) bt.BTDevice {
	if m.device != nil && m.device.address == address {
		return m.device
	}
	return nil
}

func (m *mockBTManager) StartScan([]string) {}
func (m *mockBTManager) StopScan() error    { return nil }
func (m *mockBTManager) IsScanning() bool   { return false }

func (m *mockBTManager) Connect(device bt.BTDevice) error {
	if m.connectErr != nil {
		return m.connectErr
	}
	m.device.setConnected(true)
	return nil
}

func (m *mockBTManager) Disconnect(device bt.BTDevice) error {
	m.disconnects++
	m.device.setConnected(false)
	return nil
}

func (m *mockBTManager) GetConnectedDevices() []bt.BTDevice {
	if m.device != nil && m.device.IsConnected() {
		return []bt.BTDevice{m.device}
	}
	return nil
}

func (m *mockBTManager) GetScanDevices() []bt.BTDevice {
	if m.device != nil {
		return []bt.BTDevice{m.device}
	}
	return nil
}

func (m *mockBTManager) ListenToDeviceList(ch chan<- []bt.BTDevice) func()       { return func() {} }
func (m *mockBTManager) ListenToConnectedDevices(ch chan<- []bt.BTDevice) func() { return func() {} }
func (m *mockBTManager) Shutdown()                                               {}
