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

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/NexusGPU/powerhal/internal/powerhal/server/handlers"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"
)

// Server is the HTTP surface used by the platform power manager to deliver hints
type Server struct {
	router     *gin.Engine
	httpServer *http.Server

	healthHandler   *handlers.HealthHandler
	hintHandler     *handlers.HintHandler
	platformHandler *handlers.PlatformHandler
	metricsHandler  http.Handler
}

// NewServer creates the HTTP server, metricsHandler may be nil
func NewServer(
	hal handlers.Dispatcher,
	readiness handlers.ReadinessCheck,
	socIdentifier handlers.SocIdentifier,
	governors framework.GovernorSource,
	dryRun bool,
	metricsHandler http.Handler,
	port int,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), gzip.Gzip(gzip.DefaultCompression))

	s := &Server{
		router: router,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: router,
		},
		healthHandler:   handlers.NewHealthHandler(readiness),
		hintHandler:     handlers.NewHintHandler(hal),
		platformHandler: handlers.NewPlatformHandler(socIdentifier, governors, dryRun),
		metricsHandler:  metricsHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthHandler.HandleHealthz)
	s.router.GET("/readyz", s.healthHandler.HandleReadyz)
	if s.metricsHandler != nil {
		s.router.GET("/metrics", gin.WrapH(s.metricsHandler))
	}

	apiV1 := s.router.Group("/api/v1")
	{
		apiV1.POST("/hints", s.hintHandler.HandlePowerHint)
		apiV1.POST("/interactive", s.hintHandler.HandleSetInteractive)
		apiV1.GET("/state", s.hintHandler.HandleGetState)
		apiV1.GET("/platform", s.platformHandler.HandleGetPlatform)
	}
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving HTTP until Stop is called
func (s *Server) Start() error {
	klog.Infof("Starting powerhal HTTP server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
