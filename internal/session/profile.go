package session

import (
	"github.com/9916bernard/isYafit-mobile-sub001/internal/bt"
	"github.com/9916bernard/isYafit-mobile-sub001/internal/protocol"
)

// DeviceProfile is the static picture of a device read once during session
// initialization: identity strings, battery, and for FTMS machines the
// feature bitmap and supported ranges. Every field is best effort; a
// missing characteristic leaves it zero.
type DeviceProfile struct {
	Manufacturer     string
	ModelNumber      string
	SerialNumber     string
	FirmwareRevision string
	HardwareRevision string

	HasBattery   bool
	BatteryLevel int

	Features *protocol.MachineFeatures

	SpeedRange       *protocol.SupportRange
	InclinationRange *protocol.SupportRange
	ResistanceRange  *protocol.SupportRange
	PowerRange       *protocol.SupportRange
}

// readDeviceProfile pulls everything readable off the device. Reads are
// individually best effort: devices routinely advertise DIS and then fail
// half its characteristics.
func (s *Session) readDeviceProfile(device bt.BTDevice) DeviceProfile {
	var profile DeviceProfile

	if device.HasServiceUUID(protocol.ServiceUUIDDeviceInformation) {
		readString := func(charUUID string, into *string) {
			buf, err := device.ReadCharacteristic(protocol.ServiceUUIDDeviceInformation, charUUID)
			if err != nil {
				s.logger.Printf("Session: DIS read %s failed: %v", charUUID, err)
				return
			}
			*into = protocol.DecodeDeviceInfoString(buf)
		}
		readString(protocol.CharUUIDManufacturerName, &profile.Manufacturer)
		readString(protocol.CharUUIDModelNumber, &profile.ModelNumber)
		readString(protocol.CharUUIDSerialNumber, &profile.SerialNumber)
		readString(protocol.CharUUIDFirmwareRevision, &profile.FirmwareRevision)
		readString(protocol.CharUUIDHardwareRevision, &profile.HardwareRevision)
	}

	if device.HasServiceUUID(protocol.ServiceUUIDBattery) {
		buf, err := device.ReadCharacteristic(protocol.ServiceUUIDBattery, protocol.CharUUIDBatteryLevel)
		if err != nil {
			s.logger.Printf("Session: battery read failed: %v", err)
		} else if rec := protocol.DecodeBatteryLevel(buf); rec.HasBatteryLevel {
			profile.HasBattery = true
			profile.BatteryLevel = rec.BatteryLevel
		}
	}

	if device.HasServiceUUID(protocol.ServiceUUIDFTMS) {
		if buf, err := device.ReadCharacteristic(protocol.ServiceUUIDFTMS, protocol.CharUUIDFTMSFeature); err != nil {
			s.logger.Printf("Session: machine feature read failed: %v", err)
		} else {
			feats := protocol.DecodeMachineFeatures(buf)
			profile.Features = &feats
		}

		readRange := func(charUUID string, decode func([]byte) (protocol.SupportRange, bool), into **protocol.SupportRange) {
			buf, err := device.ReadCharacteristic(protocol.ServiceUUIDFTMS, charUUID)
			if err != nil {
				return
			}
			if r, ok := decode(buf); ok {
				*into = &r
			}
		}
		readRange(protocol.CharUUIDSpeedRange, protocol.DecodeSpeedRange, &profile.SpeedRange)
		readRange(protocol.CharUUIDInclinationRange, protocol.DecodeInclinationRange, &profile.InclinationRange)
		readRange(protocol.CharUUIDResistanceRange, protocol.DecodeResistanceRange, &profile.ResistanceRange)
		readRange(protocol.CharUUIDPowerRange, protocol.DecodePowerRange, &profile.PowerRange)
	}

	return profile
}
