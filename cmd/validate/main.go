// Command validate checks an OEM telemetry document with the same parser the
// tracker uses, then runs integrity checks over the parsed series: epoch
// ordering and spacing, and physically plausible speed and altitude.
//
// Usage:
//
//	go run ./cmd/validate -file internal/feed/testdata/iss_oem_sample.xml
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/Chuchoruto/ISS-Tracker/internal/feed"
)

// Plausibility bounds for a crewed low Earth orbit.
const (
	minAltitudeKM = 150.0
	maxAltitudeKM = 1000.0
	minSpeedKMS   = 7.0
	maxSpeedKMS   = 8.2
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	file := flag.String("file", "", "path to an OEM XML document (optionally gzip-compressed)")
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*file); code != 0 {
		os.Exit(code)
	}
}

func run(path string) int {
	fmt.Println("=== OEM Telemetry Validation ===")
	fmt.Println()

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read %s: %v\n", path, err)
		return 1
	}
	series, err := feed.ParseOEM(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: parse %s: %v\n", path, err)
		return 1
	}

	stats := summarize(series)
	phases := []*phase{
		validateEnvelope(series),
		validateOrdering(series),
		validatePhysics(series),
	}

	sum := series.Summary()
	fmt.Printf("Object:     %s (%s)\n", sum.ObjectName, sum.ObjectID)
	fmt.Printf("Records:    %d\n", sum.Count)
	fmt.Printf("Epochs:     %s .. %s\n", sum.FirstEpoch, sum.LastEpoch)
	fmt.Printf("Step:       %s .. %s\n", stats.minStep, stats.maxStep)
	fmt.Printf("Speed:      %.4f .. %.4f km/s\n", stats.minSpeed, stats.maxSpeed)
	fmt.Printf("Altitude:   %.3f .. %.3f km\n", stats.minAlt, stats.maxAlt)
	fmt.Println()

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

type seriesStats struct {
	minStep, maxStep   time.Duration
	minSpeed, maxSpeed float64
	minAlt, maxAlt     float64
}

func summarize(series *domain.Series) seriesStats {
	resolver := domain.DefaultResolver()
	st := seriesStats{
		minSpeed: math.Inf(1), maxSpeed: math.Inf(-1),
		minAlt: math.Inf(1), maxAlt: math.Inf(-1),
	}
	for i, sv := range series.Vectors {
		speed := sv.Speed()
		alt := resolver.ResolveVector(sv).AltitudeKM
		st.minSpeed, st.maxSpeed = math.Min(st.minSpeed, speed), math.Max(st.maxSpeed, speed)
		st.minAlt, st.maxAlt = math.Min(st.minAlt, alt), math.Max(st.maxAlt, alt)
		if i == 0 {
			continue
		}
		step := sv.Time.Sub(series.Vectors[i-1].Time)
		if i == 1 || step < st.minStep {
			st.minStep = step
		}
		if step > st.maxStep {
			st.maxStep = step
		}
	}
	return st
}

// validateEnvelope checks the header and metadata fields the tracker serves.
func validateEnvelope(series *domain.Series) *phase {
	p := &phase{name: "Envelope (header, metadata)"}
	for _, key := range []string{"CREATION_DATE", "ORIGINATOR"} {
		if series.Header[key] == "" {
			p.errorf("header missing %s", key)
		}
	}
	for _, key := range []string{"OBJECT_NAME", "OBJECT_ID", "REF_FRAME", "TIME_SYSTEM"} {
		if series.Metadata[key] == "" {
			p.errorf("metadata missing %s", key)
		}
	}
	if ts := series.Metadata["TIME_SYSTEM"]; ts != "" && ts != "UTC" {
		p.errorf("TIME_SYSTEM is %s, epochs are interpreted as UTC", ts)
	}
	return p
}

// validateOrdering checks that epochs are unique and strictly increasing.
func validateOrdering(series *domain.Series) *phase {
	p := &phase{name: "Epoch ordering"}
	seen := make(map[string]int, len(series.Vectors))
	for i, sv := range series.Vectors {
		if j, dup := seen[sv.Epoch]; dup {
			p.errorf("record %d repeats epoch %s from record %d", i, sv.Epoch, j)
		}
		seen[sv.Epoch] = i
		if i > 0 && !sv.Time.After(series.Vectors[i-1].Time) {
			p.errorf("record %d (%s) is not after record %d (%s)", i, sv.Epoch, i-1, series.Vectors[i-1].Epoch)
		}
	}
	return p
}

// validatePhysics checks speed and altitude against low Earth orbit bounds.
func validatePhysics(series *domain.Series) *phase {
	p := &phase{name: "Physical plausibility (speed, altitude)"}
	resolver := domain.DefaultResolver()
	for i, sv := range series.Vectors {
		if s := sv.Speed(); s < minSpeedKMS || s > maxSpeedKMS {
			p.errorf("record %d (%s): speed %.4f km/s outside [%.1f, %.1f]", i, sv.Epoch, s, minSpeedKMS, maxSpeedKMS)
		}
		if alt := resolver.ResolveVector(sv).AltitudeKM; alt < minAltitudeKM || alt > maxAltitudeKM {
			p.errorf("record %d (%s): altitude %.3f km outside [%.0f, %.0f]", i, sv.Epoch, alt, minAltitudeKM, maxAltitudeKM)
		}
	}
	return p
}
