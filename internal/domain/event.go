package domain

import "time"

// Raw OEM field names for one state vector.
const (
	FieldEpoch = "EPOCH"
	FieldX     = "X"
	FieldY     = "Y"
	FieldZ     = "Z"
	FieldXDot  = "X_DOT"
	FieldYDot  = "Y_DOT"
	FieldZDot  = "Z_DOT"
)

// RawRecord is one state vector as found in the feed: field name to text value.
type RawRecord map[string]string

// Vector3 is a Cartesian triple in the inertial frame.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// StateVector is one sample of spacecraft motion.
type StateVector struct {
	Epoch    string    `json:"epoch"`
	Time     time.Time `json:"-"`
	Position Vector3   `json:"position_km"`
	Velocity Vector3   `json:"velocity_km_s"`
}

// Series is one loaded generation of telemetry. It is never mutated after
// construction; reloads replace it wholesale.
type Series struct {
	Header   map[string]string `json:"header"`
	Metadata map[string]string `json:"metadata"`
	Comments []string          `json:"comments"`
	Vectors  []StateVector     `json:"state_vectors"`
	LoadedAt time.Time         `json:"loaded_at"`
}

// SeriesSummary describes a series without its vectors.
type SeriesSummary struct {
	ObjectName string    `json:"object_name,omitempty"`
	ObjectID   string    `json:"object_id,omitempty"`
	Count      int       `json:"count"`
	FirstEpoch string    `json:"first_epoch"`
	LastEpoch  string    `json:"last_epoch"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// GeodeticFix is a derived latitude/longitude/altitude. It is never stored.
type GeodeticFix struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	AltitudeKM float64 `json:"altitude_km"`
}

// NearestMatch is the record closest to a reference time.
type NearestMatch struct {
	Vector StateVector
	Index  int
	// Delta is the record's epoch minus the reference time.
	Delta time.Duration
}

// ClearOutcome reports what a clear did.
type ClearOutcome int

const (
	Cleared ClearOutcome = iota
	AlreadyEmpty
)

func (o ClearOutcome) String() string {
	switch o {
	case Cleared:
		return "cleared"
	case AlreadyEmpty:
		return "already_empty"
	default:
		return "unknown"
	}
}
