// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

// Package events is the in-process event bus. The targeting engine publishes
// a DatasetRebuilt event after every successful rebuild; subscribers such as
// the result cache react to it without the engine knowing about them.
package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/salesradar/internal/targeting"
)

// TopicDatasetRebuilt carries DatasetRebuilt events.
const TopicDatasetRebuilt = "dataset.rebuilt"

// DatasetRebuilt describes a newly published engine state.
type DatasetRebuilt struct {
	Version         int64     `json:"version"`
	ModelsTrained   bool      `json:"models_trained"`
	Transactions    int       `json:"transactions"`
	SkippedRows     int       `json:"skipped_rows"`
	Accounts        int       `json:"accounts"`
	Products        int       `json:"products"`
	TrainingSamples int       `json:"training_samples"`
	RebuiltAt       time.Time `json:"rebuilt_at"`
}

// FromStatus builds the event for an engine status snapshot.
func FromStatus(st targeting.Status) DatasetRebuilt {
	at := st.PreparedAt
	if st.TrainedAt.After(at) {
		at = st.TrainedAt
	}
	return DatasetRebuilt{
		Version:         st.Version,
		ModelsTrained:   st.ModelsTrained,
		Transactions:    st.Transactions,
		SkippedRows:     st.SkippedRows,
		Accounts:        st.Accounts,
		Products:        st.Products,
		TrainingSamples: st.TrainingSamples,
		RebuiltAt:       at,
	}
}

func encode(ev DatasetRebuilt) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", TopicDatasetRebuilt, err)
	}
	return data, nil
}

func decode(payload []byte) (DatasetRebuilt, error) {
	var ev DatasetRebuilt
	if err := json.Unmarshal(payload, &ev); err != nil {
		return ev, fmt.Errorf("decode %s: %w", TopicDatasetRebuilt, err)
	}
	return ev, nil
}
