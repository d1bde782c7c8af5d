package protocol

// Kind identifies which wire protocol a connected bike or sensor speaks.
// Exactly one kind is active per session; detection may observe several
// matching kinds but always resolves to one.
type Kind string

const (
	KindFTMS    Kind = "FTMS"     // Fitness Machine Service (standard)
	KindCSC     Kind = "CSC"      // Cycling Speed and Cadence (standard)
	KindMobi    Kind = "MOBI"     // Mobi bike (vendor)
	KindReborn  Kind = "REBORN"   // Reborn bike (vendor, authenticated)
	KindTacx    Kind = "TACX"     // Tacx trainer (ANT+ FE-C over BLE)
	KindFitShow Kind = "FITSHOW"  // FitShow bike (vendor)
	KindYafitS3 Kind = "YAFIT_S3" // Yafit S3 bike (FTMS-style vendor)
	KindYafitS4 Kind = "YAFIT_S4" // Yafit S4 bike (FTMS-style vendor)
	KindNUS     Kind = "NUS"      // Nordic UART style service
	KindHRS     Kind = "HRS"      // Heart Rate Service
	KindCPS     Kind = "CPS"      // Cycling Power Service
	KindBMS     Kind = "BMS"      // Battery Service
	KindDIS     Kind = "DIS"      // Device Information Service
)

// AllKinds lists every known kind, highest detection priority first.
var AllKinds = []Kind{
	KindCPS,
	KindFTMS,
	KindMobi,
	KindReborn,
	KindTacx,
	KindFitShow,
	KindYafitS3,
	KindYafitS4,
	KindCSC,
	KindNUS,
	KindHRS,
	KindBMS,
	KindDIS,
}

// SupportsControl reports whether the kind accepts control point commands.
// Everything else is read-only telemetry.
func (k Kind) SupportsControl() bool {
	switch k {
	case KindFTMS, KindTacx, KindFitShow, KindYafitS3, KindYafitS4:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}
