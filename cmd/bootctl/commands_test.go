package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/raccog/caliga-bootloader/boot/alloc"
)

func TestRegionsCommand(t *testing.T) {
	resetFlags()
	writeTestConfig(t, testConfig)

	output, err := captureOutput(t, runRegions)
	if err != nil {
		t.Fatalf("runRegions() error = %v", err)
	}
	assertContains(t, output, []string{"Regions (2)", "0x101000", "0xf000", "0x120000", "Free: "})
}

func TestRegionsCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	writeTestConfig(t, testConfig)

	output, err := captureOutput(t, runRegions)
	if err != nil {
		t.Fatalf("runRegions() error = %v", err)
	}
	var res regionsResult
	decodeJSON(t, output, &res)
	if len(res.Regions) != 2 {
		t.Fatalf("got %d regions, want 2", len(res.Regions))
	}
	if res.Regions[0].Size != 0xF000 || res.Regions[0].FreeCells != 1917 {
		t.Errorf("merged region = %+v", res.Regions[0])
	}
}

func TestRunCommand(t *testing.T) {
	resetFlags()
	runOpen = []string{"/EFI/caliga/kernel.elf"}
	writeTestConfig(t, testConfig)

	output, err := captureOutput(t, runRun)
	if err != nil {
		t.Fatalf("runRun() error = %v", err)
	}
	assertContains(t, output, []string{
		"Regions (2)",
		"0 (in use)",
		"Slab pool",
		"In use: 2 / 16",
		"pl011",
		"/EFI/caliga/kernel.elf  11 bytes",
	})
}

func TestRunCommand_JSON(t *testing.T) {
	resetFlags()
	jsonOut = true
	runOpen = []string{"EFI/caliga/kernel.elf"}
	writeTestConfig(t, testConfig)

	output, err := captureOutput(t, runRun)
	if err != nil {
		t.Fatalf("runRun() error = %v", err)
	}
	var res runResult
	decodeJSON(t, output, &res)
	if res.Slab.Capacity != 16 || res.Slab.InUse != 2 {
		t.Errorf("slab = %+v", res.Slab)
	}
	if len(res.Files) != 1 || res.Files[0].Size != 11 {
		t.Errorf("files = %+v", res.Files)
	}
	if len(res.Devices) != 1 || res.Devices[0].Name != "pl011" {
		t.Errorf("devices = %+v", res.Devices)
	}
}

func TestRunCommand_MissingFile(t *testing.T) {
	resetFlags()
	quiet = true
	runOpen = []string{"/EFI/caliga/missing"}
	writeTestConfig(t, testConfig)

	_, err := captureOutput(t, runRun)
	if err == nil || !strings.Contains(err.Error(), "file not found") {
		t.Fatalf("runRun() error = %v, want file not found", err)
	}
}

func TestSlabCommand(t *testing.T) {
	resetFlags()
	slabAlloc = 5
	writeTestConfig(t, testConfig)

	output, err := captureOutput(t, runSlab)
	if err != nil {
		t.Fatalf("runSlab() error = %v", err)
	}
	assertContains(t, output, []string{"In use: 6 / 16", "######.........."})
}

func TestSlabCommand_Exhausted(t *testing.T) {
	resetFlags()
	quiet = true
	slabAlloc = 16
	writeTestConfig(t, testConfig)

	_, err := captureOutput(t, runSlab)
	if !errors.Is(err, alloc.ErrAlloc) {
		t.Fatalf("runSlab() error = %v, want ErrAlloc", err)
	}
}

func TestConfigErrors(t *testing.T) {
	resetFlags()
	writeTestConfig(t, "memory: {base: 0x1000}\n")

	if _, err := captureOutput(t, runRegions); err == nil {
		t.Fatal("runRegions() accepted a config without memory size")
	}

	configPath = "/nonexistent/boot.yaml"
	if _, err := captureOutput(t, runRun); err == nil {
		t.Fatal("runRun() accepted a missing config")
	}
}
