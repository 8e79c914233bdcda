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
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/NexusGPU/powerhal/internal/powerhal/soc"
	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/host"
	"k8s.io/klog/v2"
)

// SocIdentifier is implemented by soc.Identifier
type SocIdentifier interface {
	Identify() (soc.Identity, error)
}

// PlatformHandler reports what the HAL detected about the device
type PlatformHandler struct {
	soc       SocIdentifier
	governors framework.GovernorSource
	dryRun    bool

	hostInfo func() (*host.InfoStat, error)
}

func NewPlatformHandler(socIdentifier SocIdentifier, governors framework.GovernorSource, dryRun bool) *PlatformHandler {
	return &PlatformHandler{
		soc:       socIdentifier,
		governors: governors,
		dryRun:    dryRun,
		hostInfo:  host.Info,
	}
}

// HandleGetPlatform handles GET /api/v1/platform
func (h *PlatformHandler) HandleGetPlatform(c *gin.Context) {
	resp := api.PlatformResponse{PerfdLibraryDry: h.dryRun}

	if identity, err := h.soc.Identify(); err != nil {
		klog.V(4).Infof("soc_id unreadable: %v", err)
	} else {
		resp.SocID = identity.ID
		resp.SocIDReadable = true
		resp.LowEndVariant = identity.LowEnd
	}

	if governor, err := h.governors.CurrentGovernor(); err == nil {
		resp.Governor = governor
	}

	if info, err := h.hostInfo(); err != nil {
		klog.Warningf("failed to read host info: %v", err)
	} else {
		resp.Hostname = info.Hostname
		resp.Platform = info.Platform
		resp.KernelVersion = info.KernelVersion
		resp.KernelArch = info.KernelArch
	}

	c.JSON(http.StatusOK, resp)
}
