// Package domain models spacecraft telemetry published as CCSDS Orbit Ephemeris
// Messages (OEM) and the geodetic position derived from it.
//
// # Data Source
//
// The ISS trajectory is published by NASA as an OEM XML document at
// https://nasa-public-data.s3.amazonaws.com/iss-coords/current/ISS_OEM/ISS.OEM_J2K_EPH.xml.
// The document carries a header (creation date, originator), one segment with
// metadata (object name and id, reference frame, time system) and a data block
// of free-text COMMENT lines followed by state vectors sampled every few
// minutes over roughly fifteen days.
//
// # OEM Data Conventions
//
// Epoch format:
//
//	YYYY-DDDTHH:MM:SS.sss with an optional trailing "Z", e.g. "2023-063T12:00:00.000Z".
//	DDD is the day of the year (001-366). Epochs are UTC. Epochs are
//	non-decreasing across the series but neither strictly increasing nor
//	evenly spaced.
//
// State vector components:
//
//	X, Y, Z          position in kilometers, EME2000 (J2000) inertial frame
//	X_DOT, Y_DOT, Z_DOT  velocity in kilometers per second, same frame
//
// A record missing any component, or carrying a non-numeric value, is rejected
// when the series is built. There is no partially loaded series.
//
// # Geodetic Resolution
//
// Latitude, longitude and altitude are derived from the inertial position with
// a spherical Earth (mean radius 6371 km) and a sidereal rotation correction of
// 15 degrees per hour from 12:00 UTC, plus a fixed frame-alignment offset
// (default 32 degrees). Angles are folded back into range rather than clamped.
// See [Resolver].
package domain
