package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/evertras/bubble-table/table"

	"github.com/allbin/go-sercmd"
	"github.com/allbin/go-sercmd/internal/tui/styles"
)

const (
	columnIndex       = "index"
	columnPort        = "port"
	columnDescription = "description"
	columnUSB         = "usb"
	columnProduct     = "product"
)

// PortTable renders discovered ports as a static table. The index column
// is the number the operator types to pick a port.
func PortTable(ports []sercmd.PortInfo) string {
	columns := []table.Column{
		table.NewColumn(columnIndex, "#", 4),
		table.NewColumn(columnPort, "Port", 22),
		table.NewColumn(columnDescription, "Description", 22),
		table.NewColumn(columnUSB, "VID:PID", 11),
		table.NewColumn(columnProduct, "Product", 24),
	}

	rows := make([]table.Row, 0, len(ports))
	for i, port := range ports {
		usb := ""
		if port.IsUSB {
			usb = port.VendorID + ":" + port.ProductID
		}
		rows = append(rows, table.NewRow(table.RowData{
			columnIndex:       i,
			columnPort:        port.Path,
			columnDescription: port.Description,
			columnUSB:         usb,
			columnProduct:     port.Product,
		}))
	}

	return table.New(columns).
		WithRows(rows).
		BorderRounded().
		HeaderStyle(styles.TableHeaderStyle).
		WithBaseStyle(lipgloss.NewStyle().Foreground(styles.Text).Align(lipgloss.Left)).
		View()
}
