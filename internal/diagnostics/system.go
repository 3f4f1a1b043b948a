// Package diagnostics collects best-effort host information for the doctor
// command. Local generation backends are memory and GPU hungry; surfacing
// the host's capacity next to the backend checks saves a round of debugging
// when a model refuses to load.
package diagnostics

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/jaypipes/ghw"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// HostInfo holds host resource information. All fields are best-effort;
// zero values mean the probe failed.
type HostInfo struct {
	CPUModel   string  `json:"cpu_model"`
	CPUThreads int     `json:"cpu_threads"`
	MemTotalMB float64 `json:"mem_total_mb"`
	MemFreeMB  float64 `json:"mem_free_mb"`

	DiskTotalGB float64 `json:"disk_total_gb"`
	DiskFreeGB  float64 `json:"disk_free_gb"`

	GPUs []string `json:"gpus,omitempty"`
}

// Collect gathers host information.
func Collect() HostInfo {
	info := HostInfo{}

	if infos, err := cpu.Info(); err == nil && len(infos) > 0 {
		info.CPUModel = strings.TrimSpace(infos[0].ModelName)
	}
	if threads, err := cpu.Counts(true); err == nil {
		info.CPUThreads = threads
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemTotalMB = float64(vm.Total) / 1024 / 1024
		info.MemFreeMB = float64(vm.Available) / 1024 / 1024
	}

	if usage, err := disk.Usage(rootDiskPath()); err == nil {
		info.DiskTotalGB = float64(usage.Total) / 1024 / 1024 / 1024
		info.DiskFreeGB = float64(usage.Free) / 1024 / 1024 / 1024
	}

	info.GPUs = gpuNames()
	return info
}

// gpuNames lists graphics cards via ghw. Utilization is not probed; doctor
// only needs to know whether accelerated inference is plausible.
func gpuNames() []string {
	gpu, err := ghw.GPU()
	if err != nil || gpu == nil {
		return nil
	}
	names := make([]string, 0, len(gpu.GraphicsCards))
	for _, card := range gpu.GraphicsCards {
		name := ""
		if card.DeviceInfo != nil {
			switch {
			case card.DeviceInfo.Vendor != nil && card.DeviceInfo.Product != nil:
				name = strings.TrimSpace(card.DeviceInfo.Vendor.Name + " " + card.DeviceInfo.Product.Name)
			case card.DeviceInfo.Product != nil:
				name = strings.TrimSpace(card.DeviceInfo.Product.Name)
			case card.DeviceInfo.Vendor != nil:
				name = strings.TrimSpace(card.DeviceInfo.Vendor.Name)
			}
		}
		if name == "" {
			name = fmt.Sprintf("GPU %d", card.Index)
		}
		names = append(names, name)
	}
	return names
}

func rootDiskPath() string {
	if runtime.GOOS == "windows" {
		drive := os.Getenv("SystemDrive")
		if drive == "" {
			drive = "C:"
		}
		return drive + "\\"
	}
	return "/"
}
