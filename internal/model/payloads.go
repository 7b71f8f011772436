package model

import "github.com/deppfellow/crashmap/internal/validation"

// Payloads bind from route parameters. Names are limited to 255 characters;
// coordinates must be real WGS84 values.

type ListIntersectionsPayload struct{}

func (p *ListIntersectionsPayload) Validate() error {
	return nil
}

type GetIntersectionPayload struct {
	Name string `param:"intersectionName" validate:"required,max=255"`
}

func (p *GetIntersectionPayload) Validate() error {
	return validation.Struct(p)
}

type CompareIntersectionsPayload struct {
	First  string `param:"firstIntersection" validate:"required,max=255"`
	Second string `param:"secondIntersection" validate:"required,max=255"`
}

func (p *CompareIntersectionsPayload) Validate() error {
	return validation.Struct(p)
}

type TopDangerousPayload struct {
	DisplayNum int `param:"displayNum" validate:"min=0"`
}

func (p *TopDangerousPayload) Validate() error {
	return validation.Struct(p)
}

// WithinRangePayload is an inclusive latitude/longitude bounding box.
type WithinRangePayload struct {
	MinLatitude  float64 `param:"minLatitude" validate:"finite,min=-90,max=90,ltefield=MaxLatitude"`
	MaxLatitude  float64 `param:"maxLatitude" validate:"finite,min=-90,max=90"`
	MinLongitude float64 `param:"minLongitude" validate:"finite,min=-180,max=180,ltefield=MaxLongitude"`
	MaxLongitude float64 `param:"maxLongitude" validate:"finite,min=-180,max=180"`
}

func (p *WithinRangePayload) Validate() error {
	return validation.Struct(p)
}

type WithStreetPayload struct {
	Street string `param:"streetName" validate:"required,max=255"`
}

func (p *WithStreetPayload) Validate() error {
	return validation.Struct(p)
}

type AddIntersectionPayload struct {
	Name      string  `param:"intersectionName" validate:"required,max=255"`
	Latitude  float64 `param:"latitude" validate:"finite,min=-90,max=90"`
	Longitude float64 `param:"longitude" validate:"finite,min=-180,max=180"`
}

func (p *AddIntersectionPayload) Validate() error {
	return validation.Struct(p)
}

type UpdateCollisionsPayload struct {
	Name          string `param:"intersectionName" validate:"required,max=255"`
	NumCollisions int32  `param:"numCollisions" validate:"min=0"`
}

func (p *UpdateCollisionsPayload) Validate() error {
	return validation.Struct(p)
}

type AddCollisionPayload struct {
	Name string `param:"intersectionName" validate:"required,max=255"`
}

func (p *AddCollisionPayload) Validate() error {
	return validation.Struct(p)
}
