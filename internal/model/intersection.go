// Package model holds the records the API reads and writes and the route
// payloads that select them.
package model

import "time"

// Intersection is one row of the joined intersection relation: the location
// plus its collision count and directional traffic volumes, each NULL when
// no collision or traffic row exists.
type Intersection struct {
	Name          string  `json:"name" db:"name"`
	Latitude      float64 `json:"latitude" db:"latitude"`
	Longitude     float64 `json:"longitude" db:"longitude"`
	NumCollisions *int32  `json:"num_collisions" db:"num_collisions"`
	North         *int32  `json:"north" db:"north"`
	South         *int32  `json:"south" db:"south"`
	East          *int32  `json:"east" db:"east"`
	West          *int32  `json:"west" db:"west"`
}

// Danger is one row of the danger relation. Only intersections with a
// positive total traffic have one.
type Danger struct {
	Name          string  `json:"name" db:"name"`
	NumCollisions int32   `json:"num_collisions" db:"num_collisions"`
	TotalTraffic  int64   `json:"total_traffic" db:"total_traffic"`
	DangerRatio   float64 `json:"danger_ratio" db:"danger_ratio"`
}

// CollisionWriteKind tells a set apart from an increment.
type CollisionWriteKind string

const (
	CollisionWriteSet       CollisionWriteKind = "set"
	CollisionWriteIncrement CollisionWriteKind = "increment"
)

// CollisionUpdate describes a collision count after a successful write.
type CollisionUpdate struct {
	Name          string             `json:"name"`
	NumCollisions int32              `json:"num_collisions"`
	Kind          CollisionWriteKind `json:"kind"`
	At            time.Time          `json:"at"`
}
