package compat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/9916bernard/isYafit-mobile-sub001/internal/session"
)

var levelTitles = map[Level]string{
	LevelFull:           "Fully compatible",
	LevelPartialFixable: "Partially compatible (fully compatible after settings fix)",
	LevelPartial:        "Partially compatible",
	LevelUnverifiable:   "Compatibility verification unavailable",
	LevelIncompatible:   "Incompatible",
}

// Title is the human-facing rendering of a verdict.
func (l Level) Title() string {
	if title, ok := levelTitles[l]; ok {
		return title
	}
	return string(l)
}

func mark(ok bool) string {
	if ok {
		return "O"
	}
	return "X"
}

// WriteReport renders a full plain-text compatibility report: device
// identity, connection outcome, feature and range support, control test
// results, observed telemetry fields, known issues, and the verdict.
func WriteReport(w io.Writer, in Input, eval Evaluation, at time.Time) error {
	var b strings.Builder

	b.WriteString("==================================================\n")
	b.WriteString("          Device Compatibility Report\n")
	b.WriteString("==================================================\n")
	fmt.Fprintf(&b, "Tested at: %s\n\n", at.Format("2006-01-02 15:04:05"))

	b.WriteString("[Device]\n")
	fmt.Fprintf(&b, "  Name:     %s\n", orDash(in.Device.Name))
	fmt.Fprintf(&b, "  Address:  %s\n", orDash(in.Device.ID))
	fmt.Fprintf(&b, "  Protocol: %s", in.Detection.Resolved)
	if in.Detection.Fallback {
		b.WriteString(" (assumed)")
	}
	b.WriteString("\n")
	if in.Profile.Manufacturer != "" {
		fmt.Fprintf(&b, "  Manufacturer: %s\n", in.Profile.Manufacturer)
	}
	if in.Profile.ModelNumber != "" {
		fmt.Fprintf(&b, "  Model:        %s\n", in.Profile.ModelNumber)
	}
	if in.Profile.SerialNumber != "" {
		fmt.Fprintf(&b, "  Serial:       %s\n", in.Profile.SerialNumber)
	}
	if in.Profile.FirmwareRevision != "" {
		fmt.Fprintf(&b, "  Firmware:     %s\n", in.Profile.FirmwareRevision)
	}
	if in.Profile.HardwareRevision != "" {
		fmt.Fprintf(&b, "  Hardware:     %s\n", in.Profile.HardwareRevision)
	}
	if in.Profile.HasBattery {
		fmt.Fprintf(&b, "  Battery:      %d%%\n", in.Profile.BatteryLevel)
	}
	b.WriteString("\n")

	b.WriteString("[Connection]\n")
	if in.Connected {
		b.WriteString("  Connected: yes\n\n")
	} else {
		b.WriteString("  Connected: no\n\n")
	}

	if feats := in.Profile.Features; feats != nil {
		b.WriteString("[Machine features]\n")
		fmt.Fprintf(&b, "  [%s] Average speed\n", mark(feats.AverageSpeed))
		fmt.Fprintf(&b, "  [%s] Cadence\n", mark(feats.Cadence))
		fmt.Fprintf(&b, "  [%s] Total distance\n", mark(feats.TotalDistance))
		fmt.Fprintf(&b, "  [%s] Inclination\n", mark(feats.Inclination))
		fmt.Fprintf(&b, "  [%s] Resistance level\n", mark(feats.ResistanceLevel))
		fmt.Fprintf(&b, "  [%s] Expended energy\n", mark(feats.ExpendedEnergy))
		fmt.Fprintf(&b, "  [%s] Heart rate\n", mark(feats.HeartRate))
		fmt.Fprintf(&b, "  [%s] Elapsed time\n", mark(feats.ElapsedTime))
		fmt.Fprintf(&b, "  [%s] Power measurement\n", mark(feats.PowerMeasurement))
		b.WriteString("\n")
	}

	if in.Profile.SpeedRange != nil || in.Profile.InclinationRange != nil ||
		in.Profile.ResistanceRange != nil || in.Profile.PowerRange != nil {
		b.WriteString("[Supported ranges]\n")
		if r := in.Profile.SpeedRange; r != nil {
			fmt.Fprintf(&b, "  Speed:       %.2f ~ %.2f km/h (step %.2f)\n", r.Min, r.Max, r.Increment)
		}
		if r := in.Profile.InclinationRange; r != nil {
			fmt.Fprintf(&b, "  Inclination: %.1f ~ %.1f %% (step %.1f)\n", r.Min, r.Max, r.Increment)
		}
		if r := in.Profile.ResistanceRange; r != nil {
			fmt.Fprintf(&b, "  Resistance:  %.0f ~ %.0f (step %.0f)\n", r.Min, r.Max, r.Increment)
		}
		if r := in.Profile.PowerRange; r != nil {
			fmt.Fprintf(&b, "  Power:       %.0f ~ %.0f W (step %.0f)\n", r.Min, r.Max, r.Increment)
		}
		b.WriteString("\n")
	}

	if len(in.Probe.Steps) > 0 {
		b.WriteString("[Control tests]\n")
		for _, step := range in.Probe.Steps {
			fmt.Fprintf(&b, "  %-22s %s", step.Op, renderOutcome(step))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("[Telemetry fields observed]\n")
	fmt.Fprintf(&b, "  [%s] Speed\n", mark(eval.Coverage.Speed))
	fmt.Fprintf(&b, "  [%s] Cadence\n", mark(eval.Coverage.Cadence))
	fmt.Fprintf(&b, "  [%s] Power\n", mark(eval.Coverage.Power))
	fmt.Fprintf(&b, "  [%s] Resistance\n", mark(eval.Coverage.Resistance))
	fmt.Fprintf(&b, "  [%s] Gear\n", mark(eval.Coverage.Gear))
	fmt.Fprintf(&b, "  [%s] Heart rate\n", mark(eval.Coverage.HeartRate))
	fmt.Fprintf(&b, "  [%s] Distance\n", mark(eval.Coverage.Distance))
	fmt.Fprintf(&b, "  [%s] Battery\n", mark(eval.Coverage.Battery))
	b.WriteString("\n")

	if len(in.Issues) > 0 {
		b.WriteString("[Issues]\n")
		for _, issue := range in.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
		b.WriteString("\n")
	}

	b.WriteString("[Verdict]\n")
	fmt.Fprintf(&b, "  %s\n", eval.Level.Title())
	for _, reason := range eval.Reasons {
		fmt.Fprintf(&b, "  - %s\n", reason)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// SaveReport writes the report under dir as <device>_<HH-MM>_report.txt
// and returns the full path. The device name is sanitized to a filesystem
// safe form; an empty name falls back to "device".
func SaveReport(dir string, in Input, eval Evaluation, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	name := safeFileName(in.Device.Name)
	if name == "" {
		name = "device"
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_report.txt", name, at.Format("15-04")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}
	defer f.Close()

	if err := WriteReport(f, in, eval, at); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func renderOutcome(step session.ProbeStep) string {
	switch step.Outcome {
	case session.ProbeAcknowledged:
		return "OK"
	case session.ProbeRefused:
		return "refused (" + step.Result + ")"
	case session.ProbeSent:
		return "sent (no acknowledgement expected)"
	case session.ProbeNoAck:
		return "no acknowledgement"
	case session.ProbeUnsupported:
		return "unsupported"
	case session.ProbeWriteFailed:
		return "write failed: " + step.Err
	default:
		return string(step.Outcome)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func safeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('_')
		}
	}
	return b.String()
}
