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

// Package tuning holds the compiled-in perf daemon tuning tables.
// Tables are handed out as fresh copies, callers can't modify the originals.
package tuning

import (
	"slices"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
)

// Scaling governors the tables are written for
const (
	GovernorSchedutil   = "schedutil"
	GovernorInteractive = "interactive"
)

// Hint ids used for tuning requests issued by the HAL itself
const (
	DisplayStateHintID int32 = 0x0C00
)

// Perf lock resource opcodes
const (
	OpSchedutilSampleMs uint32 = 0x41820000

	OpSchedLoadBoostCore0 uint32 = 0x40c68100
	OpSchedLoadBoostCore1 uint32 = 0x40c68110
	OpSchedLoadBoostCore2 uint32 = 0x40c68120
	OpSchedLoadBoostCore3 uint32 = 0x40c68130

	OpHispeedLoad uint32 = 0x41440100
	OpHispeedFreq uint32 = 0x4143c100

	OpCluster0UseSchedLoad      uint32 = 0x41430000
	OpCluster1UseSchedLoad      uint32 = 0x41430100
	OpCluster0UseMigrationNotif uint32 = 0x41434000
	OpCluster1UseMigrationNotif uint32 = 0x41434100
	OpCluster0TimerRate         uint32 = 0x41424000
	OpCluster1TimerRate         uint32 = 0x41424100
	OpNotifyOnMigrate           uint32 = 0x4241c000
)

// big.LITTLE interactive timer rates in ms
const (
	TimerRateMs40 int32 = 40
	TimerRateMs50 int32 = 50
)

// sample_ms = 10
var schedutilEncode = api.TuningTable{
	{Key: OpSchedutilSampleMs, Value: 0xa},
}

// sample_ms = 10, sched load boost -6 on cores 0-3, hispeed load 95, hispeed freq 998MHz
var schedutilLowEndEncode = api.TuningTable{
	{Key: OpSchedutilSampleMs, Value: 0xa},
	{Key: OpSchedLoadBoostCore0, Value: -6},
	{Key: OpSchedLoadBoostCore1, Value: -6},
	{Key: OpSchedLoadBoostCore2, Value: -6},
	{Key: OpSchedLoadBoostCore3, Value: -6},
	{Key: OpHispeedLoad, Value: 0x5f},
	{Key: OpHispeedFreq, Value: 0x3e6},
}

var interactiveEncode = api.TuningTable{
	{Key: OpCluster0UseSchedLoad, Value: 0x1},
	{Key: OpCluster1UseSchedLoad, Value: 0x1},
	{Key: OpCluster0UseMigrationNotif, Value: 0x1},
	{Key: OpCluster1UseMigrationNotif, Value: 0x1},
	{Key: OpCluster0TimerRate, Value: TimerRateMs40},
	{Key: OpCluster1TimerRate, Value: TimerRateMs40},
}

var displayOff = api.TuningTable{
	{Key: OpCluster0TimerRate, Value: TimerRateMs50},
	{Key: OpCluster1TimerRate, Value: TimerRateMs50},
	{Key: OpNotifyOnMigrate, Value: 0x00},
}

// SchedutilEncode is the default encode table on schedutil targets
func SchedutilEncode() api.TuningTable { return slices.Clone(schedutilEncode) }

// SchedutilLowEndEncode is the encode table for SDM439/429 on schedutil
func SchedutilLowEndEncode() api.TuningTable { return slices.Clone(schedutilLowEndEncode) }

// InteractiveEncode is the encode table on interactive targets
func InteractiveEncode() api.TuningTable { return slices.Clone(interactiveEncode) }

// DisplayOff is applied while the display is off on interactive targets
func DisplayOff() api.TuningTable { return slices.Clone(displayOff) }
