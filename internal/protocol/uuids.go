package protocol

import "strings"

// Bluetooth service and characteristic UUIDs for every protocol this core
// speaks. Standard profiles use the Bluetooth base UUID; vendors use their
// own 128-bit identifiers.
const (
	// Fitness Machine Service (FTMS)
	ServiceUUIDFTMS             = "00001826-0000-1000-8000-00805f9b34fb"
	CharUUIDFTMSFeature         = "00002acc-0000-1000-8000-00805f9b34fb"
	CharUUIDIndoorBikeData      = "00002ad2-0000-1000-8000-00805f9b34fb"
	CharUUIDFTMSControlPoint    = "00002ad9-0000-1000-8000-00805f9b34fb"
	CharUUIDFTMSStatus          = "00002ada-0000-1000-8000-00805f9b34fb"
	CharUUIDSpeedRange          = "00002ad4-0000-1000-8000-00805f9b34fb"
	CharUUIDInclinationRange    = "00002ad5-0000-1000-8000-00805f9b34fb"
	CharUUIDResistanceRange     = "00002ad6-0000-1000-8000-00805f9b34fb"
	CharUUIDPowerRange          = "00002ad8-0000-1000-8000-00805f9b34fb"

	// Cycling Speed and Cadence Service (CSC)
	ServiceUUIDCSC         = "00001816-0000-1000-8000-00805f9b34fb"
	CharUUIDCSCMeasurement = "00002a5b-0000-1000-8000-00805f9b34fb"

	// Cycling Power Service
	ServiceUUIDCyclingPower         = "00001818-0000-1000-8000-00805f9b34fb"
	CharUUIDCyclingPowerMeasurement = "00002a63-0000-1000-8000-00805f9b34fb"

	// Heart Rate Service
	ServiceUUIDHeartRate         = "0000180d-0000-1000-8000-00805f9b34fb"
	CharUUIDHeartRateMeasurement = "00002a37-0000-1000-8000-00805f9b34fb"

	// Battery Service
	ServiceUUIDBattery      = "0000180f-0000-1000-8000-00805f9b34fb"
	CharUUIDBatteryLevel    = "00002a19-0000-1000-8000-00805f9b34fb"

	// Device Information Service
	ServiceUUIDDeviceInformation = "0000180a-0000-1000-8000-00805f9b34fb"
	CharUUIDModelNumber          = "00002a24-0000-1000-8000-00805f9b34fb"
	CharUUIDSerialNumber         = "00002a25-0000-1000-8000-00805f9b34fb"
	CharUUIDFirmwareRevision     = "00002a26-0000-1000-8000-00805f9b34fb"
	CharUUIDHardwareRevision     = "00002a27-0000-1000-8000-00805f9b34fb"
	CharUUIDManufacturerName     = "00002a29-0000-1000-8000-00805f9b34fb"

	// Mobi vendor service
	ServiceUUIDMobi  = "0000ffe0-0000-1000-8000-00805f9b34fb"
	CharUUIDMobiData = "0000ffe4-0000-1000-8000-00805f9b34fb"

	// Reborn vendor service
	ServiceUUIDReborn    = "00010203-0405-0607-0809-0a0b0c0d1910"
	CharUUIDRebornWrite  = "00010203-0405-0607-0809-0a0b0c0d2b11"
	CharUUIDRebornData   = "00010203-0405-0607-0809-0a0b0c0d2b10"

	// Tacx vendor service (ANT+ FE-C over BLE)
	ServiceUUIDTacx   = "6e40fec1-b5a3-f393-e0a9-e50e24dcca9e"
	CharUUIDTacxRead  = "6e40fec2-b5a3-f393-e0a9-e50e24dcca9e"
	CharUUIDTacxWrite = "6e40fec3-b5a3-f393-e0a9-e50e24dcca9e"

	// FitShow vendor service
	ServiceUUIDFitShow      = "0000fff0-0000-1000-8000-00805f9b34fb"
	CharUUIDFitShowWrite    = "0000fff2-0000-1000-8000-00805f9b34fb"
	CharUUIDFitShowBikeData = "0000fff3-0000-1000-8000-00805f9b34fb"

	// Nordic UART style service shared by several vendor bikes
	ServiceUUIDNUS = "6e400001-b5a3-f393-e0a9-e50e24dcca9e"
	CharUUIDNUSTX  = "6e400003-b5a3-f393-e0a9-e50e24dcca9e"
	CharUUIDNUSRX  = "6e400002-b5a3-f393-e0a9-e50e24dcca9e"
)

const bluetoothBaseSuffix = "-0000-1000-8000-00805f9b34fb"

// NormalizeUUID lowercases a UUID string and expands 16-bit short forms
// ("1826" or "0x1826") to the full 128-bit Bluetooth base form, so that
// identifiers from different transport backends compare equal.
func NormalizeUUID(uuid string) string {
	u := strings.ToLower(strings.TrimSpace(uuid))
	u = strings.TrimPrefix(u, "0x")
	if len(u) == 4 {
		return "0000" + u + bluetoothBaseSuffix
	}
	return u
}

// ScanServiceUUIDs returns the service identifiers a scanner should filter
// on to find any device this core can talk to.
func ScanServiceUUIDs() []string {
	return []string{
		ServiceUUIDFTMS,
		ServiceUUIDCSC,
		ServiceUUIDCyclingPower,
		ServiceUUIDMobi,
		ServiceUUIDReborn,
		ServiceUUIDTacx,
		ServiceUUIDFitShow,
		ServiceUUIDNUS,
		ServiceUUIDHeartRate,
	}
}
