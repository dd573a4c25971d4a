package sercmd

import (
	"path/filepath"
	"strings"

	"go.bug.st/serial/enumerator"
)

// detailedPortsList is replaced in tests
var detailedPortsList = enumerator.GetDetailedPortsList

// PortInfo describes a discovered port
type PortInfo struct {
	Name         string
	Path         string
	Description  string
	IsUSB        bool
	VendorID     string
	ProductID    string
	SerialNumber string
	Product      string
}

// DescribePorts returns one PortInfo per path, in the same order. USB
// details are filled in when the OS enumerator knows the port; an enumerator
// failure is returned together with the basic descriptions.
func DescribePorts(paths []string) ([]PortInfo, error) {
	infos := make([]PortInfo, len(paths))
	for i, path := range paths {
		name := filepath.Base(path)
		infos[i] = PortInfo{
			Name:        name,
			Path:        path,
			Description: getPortDescription(name),
		}
	}

	details, err := detailedPortsList()
	if err != nil {
		return infos, err
	}

	byName := make(map[string]*enumerator.PortDetails, len(details))
	for _, d := range details {
		byName[d.Name] = d
	}
	for i := range infos {
		d, ok := byName[infos[i].Path]
		if !ok || !d.IsUSB {
			continue
		}
		infos[i].IsUSB = true
		infos[i].VendorID = d.VID
		infos[i].ProductID = d.PID
		infos[i].SerialNumber = d.SerialNumber
		infos[i].Product = d.Product
	}
	return infos, nil
}

// getPortDescription provides human-readable descriptions for different port types
func getPortDescription(name string) string {
	switch {
	case strings.HasPrefix(name, "ttyUSB"):
		return "USB Serial Port"
	case strings.HasPrefix(name, "ttyACM"):
		return "USB CDC/ACM Device"
	case strings.HasPrefix(name, "ttyAMA"):
		return "ARM Serial Port"
	case strings.HasPrefix(name, "ttyTHS"):
		return "Tegra Serial Port"
	case strings.HasPrefix(name, "ttyS"):
		return "Standard Serial Port"
	case strings.HasPrefix(name, "tty.usb"), strings.HasPrefix(name, "cu.usb"):
		return "USB Serial Port"
	case strings.HasPrefix(strings.ToUpper(name), "COM"):
		return "COM Port"
	default:
		return "Serial Port"
	}
}
