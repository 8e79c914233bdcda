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

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// ReadinessCheck is implemented by perfd.Client
type ReadinessCheck interface {
	Ready() error
}

// HealthHandler reports liveness and whether perf daemon requests can be served
type HealthHandler struct {
	readiness ReadinessCheck
}

func NewHealthHandler(readiness ReadinessCheck) *HealthHandler {
	return &HealthHandler{readiness: readiness}
}

// HandleHealthz handles GET /healthz
func (h *HealthHandler) HandleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, api.StatusResponse{Status: "ok"})
}

// HandleReadyz handles GET /readyz
func (h *HealthHandler) HandleReadyz(c *gin.Context) {
	if h.readiness == nil {
		c.JSON(http.StatusServiceUnavailable, api.StatusResponse{Status: "not ready", Reason: "no perf daemon client"})
		return
	}
	if err := h.readiness.Ready(); err != nil {
		klog.V(4).Infof("readiness check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, api.StatusResponse{Status: "not ready", Reason: err.Error()})
		return
	}
	c.JSON(http.StatusOK, api.StatusResponse{Status: "ready"})
}
