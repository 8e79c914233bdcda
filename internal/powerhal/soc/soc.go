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

package soc

import (
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
)

// SDM439 and SDM429 platform ids
var LowEndSocIDs = []int{353, 354, 363, 364}

// IDReader returns the numeric SoC identifier of the platform
type IDReader interface {
	ReadSocID() (int, error)
}

// Identity describes the detected SoC
type Identity struct {
	ID     int
	LowEnd bool
}

// Identifier tells low-end SoC variants apart from the default target.
// It keeps no state, the identifier is read on every call.
type Identifier struct {
	reader    IDReader
	lowEndIDs []int
}

var _ framework.PlatformCapabilities = &Identifier{}

func NewIdentifier(reader IDReader) *Identifier {
	return &Identifier{reader: reader, lowEndIDs: LowEndSocIDs}
}

// Identify reads the SoC identifier and classifies it
func (p *Identifier) Identify() (Identity, error) {
	id, err := p.reader.ReadSocID()
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: id, LowEnd: lo.Contains(p.lowEndIDs, id)}, nil
}

// IsLowEndVariant reports false whenever the identifier can't be read
func (p *Identifier) IsLowEndVariant() bool {
	identity, err := p.Identify()
	if err != nil {
		klog.Warningf("Unable to read soc_id: %v", err)
		return false
	}
	return identity.LowEnd
}
