/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
)

const (
	attributeDelim = ";"
	valueDelim     = "="

	AttributeState  = "state"
	AttributeHintID = "hint_id"

	DefaultVideoEncodeHintID int32 = 0x0A00
)

var ErrEmpty = errors.New("metadata is empty")

// Parse splits "name=value;name=value" into attributes. Later duplicates win.
func Parse(s string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmpty
	}
	attributes := make(map[string]string)
	for _, pair := range strings.Split(s, attributeDelim) {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, valueDelim)
		if !ok {
			return nil, fmt.Errorf("attribute %q has no value", pair)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("attribute %q has no name", pair)
		}
		attributes[name] = strings.TrimSpace(value)
	}
	if len(attributes) == 0 {
		return nil, ErrEmpty
	}
	return attributes, nil
}

func parseInt32(name, value string) (int32, error) {
	v, err := strconv.ParseInt(value, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %w", name, err)
	}
	return int32(v), nil
}

// ParseVideoEncode parses the metadata of a video encode hint.
// A missing state leaves it unknown, a missing hint_id falls back to the default encode hint.
func ParseVideoEncode(s string) (api.VideoEncodeMetadata, error) {
	md := api.VideoEncodeMetadata{
		State:  api.EncodeStateUnknown,
		HintID: DefaultVideoEncodeHintID,
	}
	attributes, err := Parse(s)
	if err != nil {
		return md, err
	}
	if value, ok := attributes[AttributeHintID]; ok {
		if md.HintID, err = parseInt32(AttributeHintID, value); err != nil {
			return md, err
		}
	}
	if value, ok := attributes[AttributeState]; ok {
		state, err := parseInt32(AttributeState, value)
		if err != nil {
			return md, err
		}
		md.State = api.EncodeState(state)
	}
	return md, nil
}
