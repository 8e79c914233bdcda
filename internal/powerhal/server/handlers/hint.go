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

package handlers

import (
	"net/http"

	"github.com/NexusGPU/powerhal/internal/constants"
	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/gin-gonic/gin"
	"github.com/lithammer/shortuuid/v4"
	"k8s.io/klog/v2"
)

// Dispatcher is the hint entry point of the HAL
type Dispatcher interface {
	PowerHint(hint api.PowerHint, data *api.HintData) api.HintResult
	SetInteractive(on bool) api.HintResult
	State() api.StateSnapshot
}

// HintHandler forwards hints from the platform power manager to the HAL
type HintHandler struct {
	hal Dispatcher
}

func NewHintHandler(hal Dispatcher) *HintHandler {
	return &HintHandler{hal: hal}
}

// HandlePowerHint handles POST /api/v1/hints
func (h *HintHandler) HandlePowerHint(c *gin.Context) {
	var req api.HintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}
	hint, err := api.ParsePowerHint(req.Hint)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	eventID := shortuuid.NewWithAlphabet(constants.ShortUUIDAlphabet)
	result := h.hal.PowerHint(hint, &api.HintData{Value: req.Value, Metadata: req.Metadata})
	klog.V(4).Infof("hint event %s: %s -> %s", eventID, hint, result)

	c.JSON(http.StatusOK, api.HintResponse{
		EventID: eventID,
		Hint:    hint.String(),
		Result:  result.String(),
	})
}

// HandleSetInteractive handles POST /api/v1/interactive
func (h *HintHandler) HandleSetInteractive(c *gin.Context) {
	var req api.InteractiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	eventID := shortuuid.NewWithAlphabet(constants.ShortUUIDAlphabet)
	result := h.hal.SetInteractive(*req.On)
	klog.V(4).Infof("interactive event %s: on=%t -> %s", eventID, *req.On, result)

	c.JSON(http.StatusOK, api.HintResponse{
		EventID: eventID,
		Hint:    "INTERACTIVE",
		Result:  result.String(),
	})
}

// HandleGetState handles GET /api/v1/state
func (h *HintHandler) HandleGetState(c *gin.Context) {
	c.JSON(http.StatusOK, api.StateResponse{State: h.hal.State()})
}
