// Command genfixture writes a synthetic CCSDS OEM XML document describing a
// circular orbit, for local development and test fixtures. The output parses
// with the same code the tracker uses for the live feed.
//
// Usage:
//
//	go run ./cmd/genfixture \
//	  -start 2023-063T12:00:00.000Z \
//	  -count 240 -step 4m \
//	  -out internal/feed/testdata/synthetic.xml
package main

import (
	"bytes"
	"encoding/xml"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/Chuchoruto/ISS-Tracker/internal/domain"
	"github.com/klauspost/compress/gzip"
)

// earthMu is Earth's gravitational parameter in km^3/s^2.
const earthMu = 398600.4418

const epochLayout = "2006-002T15:04:05.000Z"

type orbit struct {
	start          time.Time
	count          int
	step           time.Duration
	radiusKM       float64
	inclinationDeg float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "", "first epoch (YYYY-DDDTHH:MM:SS.sssZ); defaults to now, truncated to the minute")
	count := flag.Int("count", 240, "number of state vectors")
	step := flag.Duration("step", 4*time.Minute, "spacing between state vectors")
	radius := flag.Float64("radius", 6793, "orbit radius in km")
	inclination := flag.Float64("inclination", 51.64, "orbit inclination in degrees")
	out := flag.String("out", "", "output path (stdout when empty)")
	compress := flag.Bool("gzip", false, "gzip the output")
	flag.Parse()

	o := orbit{
		count:          *count,
		step:           *step,
		radiusKM:       *radius,
		inclinationDeg: *inclination,
	}
	if *start == "" {
		o.start = time.Now().UTC().Truncate(time.Minute)
	} else {
		t, err := domain.ParseEpoch(*start)
		if err != nil {
			return fmt.Errorf("parse -start: %w", err)
		}
		o.start = t
	}
	if o.count < 1 || o.step <= 0 || o.radiusKM <= domain.EarthRadiusKM {
		flag.Usage()
		return fmt.Errorf("need -count >= 1, -step > 0 and -radius above the Earth's surface")
	}

	doc, err := generate(o)
	if err != nil {
		return err
	}
	if *compress {
		if doc, err = gzipBytes(doc); err != nil {
			return err
		}
	}

	if *out == "" {
		_, err = os.Stdout.Write(doc)
		return err
	}
	if err := os.WriteFile(*out, doc, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	log.Printf("wrote %d state vectors to %s", o.count, *out)
	return nil
}

// generate renders the orbit as an OEM document.
func generate(o orbit) ([]byte, error) {
	stop := o.start.Add(time.Duration(o.count-1) * o.step)

	doc := ndm{
		OEM: oem{
			ID:      "CCSDS_OEM_VERS",
			Version: "2.0",
			Header: header{
				CreationDate: o.start.Format(epochLayout),
				Originator:   "GENFIXTURE",
			},
			Body: body{Segment: segment{
				Metadata: metadata{
					ObjectName: "ISS",
					ObjectID:   "1998-067-A",
					CenterName: "EARTH",
					RefFrame:   "EME2000",
					TimeSystem: "UTC",
					StartTime:  o.start.Format(epochLayout),
					StopTime:   stop.Format(epochLayout),
				},
				Data: data{
					Comments: []string{
						"Synthetic circular orbit",
						fmt.Sprintf("RADIUS=%.3f km INCLINATION=%.3f deg", o.radiusKM, o.inclinationDeg),
					},
					StateVectors: o.vectors(),
				},
			}},
		},
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode oem: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (o orbit) vectors() []stateVector {
	period := 2 * math.Pi * math.Sqrt(math.Pow(o.radiusKM, 3)/earthMu)
	speed := math.Sqrt(earthMu / o.radiusKM)
	sinI, cosI := math.Sincos(o.inclinationDeg * math.Pi / 180)

	out := make([]stateVector, o.count)
	for i := range out {
		elapsed := time.Duration(i) * o.step
		theta := 2 * math.Pi * elapsed.Seconds() / period
		sinT, cosT := math.Sincos(theta)

		out[i] = stateVector{
			Epoch: o.start.Add(elapsed).Format(epochLayout),
			X:     km(o.radiusKM * cosT),
			Y:     km(o.radiusKM * sinT * cosI),
			Z:     km(o.radiusKM * sinT * sinI),
			XDot:  kms(-speed * sinT),
			YDot:  kms(speed * cosT * cosI),
			ZDot:  kms(speed * cosT * sinI),
		}
	}
	return out
}

func gzipBytes(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip: %w", err)
	}
	return buf.Bytes(), nil
}

// OEM XML shapes.

type ndm struct {
	XMLName xml.Name `xml:"ndm"`
	OEM     oem      `xml:"oem"`
}

type oem struct {
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
	Header  header `xml:"header"`
	Body    body   `xml:"body"`
}

type header struct {
	CreationDate string `xml:"CREATION_DATE"`
	Originator   string `xml:"ORIGINATOR"`
}

type body struct {
	Segment segment `xml:"segment"`
}

type segment struct {
	Metadata metadata `xml:"metadata"`
	Data     data     `xml:"data"`
}

type metadata struct {
	ObjectName string `xml:"OBJECT_NAME"`
	ObjectID   string `xml:"OBJECT_ID"`
	CenterName string `xml:"CENTER_NAME"`
	RefFrame   string `xml:"REF_FRAME"`
	TimeSystem string `xml:"TIME_SYSTEM"`
	StartTime  string `xml:"START_TIME"`
	StopTime   string `xml:"STOP_TIME"`
}

type data struct {
	Comments     []string      `xml:"COMMENT"`
	StateVectors []stateVector `xml:"stateVector"`
}

type stateVector struct {
	Epoch string    `xml:"EPOCH"`
	X     component `xml:"X"`
	Y     component `xml:"Y"`
	Z     component `xml:"Z"`
	XDot  component `xml:"X_DOT"`
	YDot  component `xml:"Y_DOT"`
	ZDot  component `xml:"Z_DOT"`
}

type component struct {
	Units string `xml:"units,attr"`
	Value string `xml:",chardata"`
}

func km(v float64) component  { return component{Units: "km", Value: fmt.Sprintf("%.8f", v)} }
func kms(v float64) component { return component{Units: "km/s", Value: fmt.Sprintf("%.11f", v)} }
