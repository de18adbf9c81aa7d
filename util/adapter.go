package util

import (
	"fmt"

	"yanalysis/model"

	"github.com/mitchellh/mapstructure"
)

// DecodeCriteria overlays a free-form request body on base. Keys absent from
// body keep base's value; unknown keys are rejected.
func DecodeCriteria(body map[string]any, base model.ScreenCriteria) (model.ScreenCriteria, error) {
	out := base
	// mapstructure decodes into existing slices element by element
	if _, ok := body["selectedSectors"]; ok {
		out.SelectedSectors = nil
	}
	if _, ok := body["selectedMarketCaps"]; ok {
		out.SelectedMarketCaps = nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return base, err
	}
	if err := decoder.Decode(body); err != nil {
		return base, fmt.Errorf("invalid portfolio criteria: %w", err)
	}
	return out, nil
}
