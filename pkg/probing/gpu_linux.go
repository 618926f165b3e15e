//go:build linux && cgo

package probing

import (
	"errors"
	"fmt"
	"log"

	"SystemMonitor/pkg/metrics"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// GPUs lists NVIDIA devices visible through NVML. Hosts without the driver
// return an empty list.
func GPUs() []metrics.GPUInfo {
	if ret := nvml.Init(); !errors.Is(ret, nvml.SUCCESS) {
		return nil
	}
	defer nvml.Shutdown()

	count, ret := nvml.DeviceGetCount()
	if !errors.Is(ret, nvml.SUCCESS) {
		log.Printf("WARNING: NVML device count: %s", nvml.ErrorString(ret))
		return nil
	}

	var driver string
	capture(nvml.SystemGetDriverVersion, &driver)

	gpus := make([]metrics.GPUInfo, 0, count)
	for i := 0; i < count; i++ {
		device, ret := nvml.DeviceGetHandleByIndex(i)
		if !errors.Is(ret, nvml.SUCCESS) {
			continue
		}
		gpus = append(gpus, deviceInfo(device, i, driver))
	}
	return gpus
}

func deviceInfo(device nvml.Device, index int, driver string) metrics.GPUInfo {
	gpu := metrics.GPUInfo{Index: index, DriverVersion: driver}

	if !capture(device.GetName, &gpu.Name) {
		gpu.Name = fmt.Sprintf("GPU %d", index)
	}
	if mem, ret := device.GetMemoryInfo(); errors.Is(ret, nvml.SUCCESS) {
		gpu.MemoryTotal = mem.Total
		gpu.MemoryUsed = mem.Used
	}
	if util, ret := device.GetUtilizationRates(); errors.Is(ret, nvml.SUCCESS) {
		gpu.UtilizationGPU = float64(util.Gpu)
	}
	if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); errors.Is(ret, nvml.SUCCESS) {
		gpu.TemperatureC = float64(temp)
	}
	return gpu
}

func capture[T any](call func() (T, nvml.Return), dst *T) bool {
	if val, ret := call(); errors.Is(ret, nvml.SUCCESS) {
		*dst = val
		return true
	}
	return false
}
