package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/raccog/caliga-bootloader/boot"
	"github.com/raccog/caliga-bootloader/boot/region"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	usedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	freeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
)

// style applies s unless --no-color is set.
func style(s lipgloss.Style, text string) string {
	if noColor {
		return text
	}
	return s.Render(text)
}

// cell pads text to a fixed column width.
func cell(width int, text string) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

func renderRegions(regions []region.RegionInfo, free uintptr) string {
	var sb strings.Builder
	sb.WriteString(style(titleStyle, fmt.Sprintf("Regions (%d)", len(regions))) + "\n")
	sb.WriteString(style(headerStyle, cell(14, "ADDR")+cell(12, "SIZE")+cell(6, "PRE")+cell(6, "POST")+"FREE CELLS") + "\n")
	for _, r := range regions {
		freeCells := style(freeStyle, fmt.Sprintf("%d", r.FreeCells))
		if r.FreeCells == 0 {
			freeCells = style(usedStyle, "0 (in use)")
		}
		sb.WriteString(cell(14, fmt.Sprintf("%#x", r.Addr)) +
			cell(12, fmt.Sprintf("%#x", r.Size)) +
			cell(6, fmt.Sprintf("%d", r.PreSize)) +
			cell(6, fmt.Sprintf("%d", r.PostSize)) +
			freeCells + "\n")
	}
	sb.WriteString(fmt.Sprintf("Free: %d bytes\n", free))
	return sb.String()
}

// renderBitmap draws one character per usable slab: '#' used, '.' free.
func renderBitmap(bitmap []byte, capacity int) string {
	var sb strings.Builder
	for i := 0; i < capacity; i++ {
		if i > 0 && i%64 == 0 {
			sb.WriteByte('\n')
		}
		if bitmap[i/8]&(1<<(i%8)) != 0 {
			sb.WriteString(style(usedStyle, "#"))
		} else {
			sb.WriteString(style(freeStyle, "."))
		}
	}
	sb.WriteByte('\n')
	return sb.String()
}

func renderSlab(s boot.SlabStatus) string {
	return fmt.Sprintf("%s\n  Storage: %#x\n  Layout: size=%d align=%d\n  In use: %d / %d\n",
		style(titleStyle, "Slab pool"), s.Addr, s.Size, s.Align, s.InUse, s.Capacity)
}

func renderDevices(devices []boot.Device) string {
	var sb strings.Builder
	sb.WriteString(style(titleStyle, fmt.Sprintf("Devices (%d)", len(devices))) + "\n")
	for _, d := range devices {
		sb.WriteString("  " + cell(16, d.Name) + cell(12, d.Kind.String()) + fmt.Sprintf("%#x", d.Base) + "\n")
	}
	return sb.String()
}
