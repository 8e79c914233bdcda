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

package api

// HintRequest is the body of POST /api/v1/hints
type HintRequest struct {
	Hint     string  `json:"hint" binding:"required"`
	Value    *int32  `json:"value,omitempty"`
	Metadata *string `json:"metadata,omitempty"`
}

// InteractiveRequest is the body of POST /api/v1/interactive
type InteractiveRequest struct {
	On *bool `json:"on" binding:"required"`
}

// HintResponse reports the outcome of a dispatched hint
type HintResponse struct {
	EventID string `json:"eventId"`
	Hint    string `json:"hint"`
	Result  string `json:"result"`
}

// StateResponse wraps the HAL state snapshot
type StateResponse struct {
	State StateSnapshot `json:"state"`
}

// PlatformResponse describes the platform the HAL runs on
type PlatformResponse struct {
	SocID           int    `json:"socId,omitempty"`
	SocIDReadable   bool   `json:"socIdReadable"`
	LowEndVariant   bool   `json:"lowEndVariant"`
	Governor        string `json:"governor,omitempty"`
	Hostname        string `json:"hostname,omitempty"`
	Platform        string `json:"platform,omitempty"`
	KernelVersion   string `json:"kernelVersion,omitempty"`
	KernelArch      string `json:"kernelArch,omitempty"`
	PerfdLibraryDry bool   `json:"perfdLibraryDryRun"`
}

// StatusResponse is a generic status message
type StatusResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// ErrorResponse is returned on request failures
type ErrorResponse struct {
	Error string `json:"error"`
}
