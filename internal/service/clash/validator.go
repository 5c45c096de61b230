package clash

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"buildingclash/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"
)

// ErrInvalidJSON is returned when the input is not parsable JSON at all
var ErrInvalidJSON = errors.New("invalid JSON input")

// FieldError names one offending field of a rejected batch
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError rejects a whole batch. No feature is accepted partially.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

type featureCollectionRequest struct {
	Features []featureRequest `json:"features" validate:"required,dive"`
}

type featureRequest struct {
	ID         *string            `json:"id" validate:"required"`
	Properties *propertiesRequest `json:"properties" validate:"required"`
	Geometry   *geometryRequest   `json:"geometry" validate:"required"`
}

type propertiesRequest struct {
	Elevation *float64 `json:"elevation" validate:"required"`
	Height    *float64 `json:"height" validate:"required,gte=0"`
}

type geometryRequest struct {
	Type        string        `json:"type" validate:"required,eq=Polygon"`
	Coordinates [][][]float64 `json:"coordinates" validate:"required,min=1,dive,min=3,dive,min=2"`
}

// InputValidator turns raw submit bodies into typed building records
type InputValidator struct {
	validate *validator.Validate
}

// NewInputValidator creates a validator reporting fields by their JSON names
func NewInputValidator() *InputValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &InputValidator{validate: v}
}

// Parse validates raw and returns the buildings in input order
func (iv *InputValidator) Parse(raw []byte) ([]model.BuildingFeature, error) {
	var req featureCollectionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		verr := &ValidationError{}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "$"
			}
			verr.add(field, fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value))
		} else {
			verr.add("$", err.Error())
		}
		return nil, verr
	}

	if err := iv.validate.Struct(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate input: %w", err)
		}
		verr := &ValidationError{}
		for _, fe := range fieldErrs {
			verr.add(fieldPath(fe.Namespace()), describe(fe))
		}
		return nil, verr
	}

	return toBuildings(req.Features)
}

func toBuildings(features []featureRequest) ([]model.BuildingFeature, error) {
	verr := &ValidationError{}
	seen := make(map[string]int, len(features))
	buildings := make([]model.BuildingFeature, 0, len(features))

	for i, f := range features {
		if prev, dup := seen[*f.ID]; dup {
			verr.add(fmt.Sprintf("features[%d].id", i),
				fmt.Sprintf("duplicate id %q, first used by features[%d]", *f.ID, prev))
			continue
		}
		seen[*f.ID] = i

		ring := make(orb.Ring, 0, len(f.Geometry.Coordinates[0])+1)
		for _, pos := range f.Geometry.Coordinates[0] {
			ring = append(ring, orb.Point{pos[0], pos[1]})
		}
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		if len(ring) < 4 {
			verr.add(fmt.Sprintf("features[%d].geometry.coordinates[0]", i),
				"ring needs at least 3 distinct positions")
			continue
		}

		buildings = append(buildings, model.BuildingFeature{
			ID:        *f.ID,
			Footprint: ring,
			Elevation: *f.Properties.Elevation,
			Height:    *f.Properties.Height,
		})
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return buildings, nil
}

// fieldPath strips the root struct name from a validator namespace
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "eq":
		return fmt.Sprintf("must be %q", fe.Param())
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " elements"
	default:
		return "failed on " + fe.Tag()
	}
}
