// Package cli formats command results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// Printer writes values in one output format.
type Printer struct {
	Format OutputFormat
	Out    io.Writer
}

// Print renders v, which must marshal to JSON.
func (p Printer) Print(v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	switch p.Format {
	case OutputFormatJSON:
		_, err := fmt.Fprintln(p.Out, string(jsonData))
		return err
	case OutputFormatYAML:
		return p.outputYAML(jsonData)
	case OutputFormatTable, "":
		return p.outputTable(jsonData)
	default:
		return fmt.Errorf("unsupported output format: %s", p.Format)
	}
}

// outputYAML converts JSON to YAML and prints it
func (p Printer) outputYAML(jsonData []byte) error {
	var data interface{}
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}

	_, err = fmt.Fprint(p.Out, string(yamlData))
	return err
}

// outputTable formats objects as property tables and arrays as row tables.
func (p Printer) outputTable(jsonData []byte) error {
	var data interface{}
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	switch d := data.(type) {
	case map[string]interface{}:
		p.formatKeyValueTable(d)
	case []interface{}:
		p.formatTableFromArray(d)
	default:
		fmt.Fprintln(p.Out, string(jsonData))
	}
	return nil
}

func (p Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.Out)
	t.SetStyle(table.StyleRounded)
	return t
}

// formatKeyValueTable formats an object as key-value pairs
func (p Printer) formatKeyValueTable(data map[string]interface{}) {
	t := p.newTable()
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("PROPERTY"),
		text.FgHiCyan.Sprint("VALUE"),
	})

	for _, key := range sortedKeys(data) {
		t.AppendRow(table.Row{
			text.FgYellow.Sprint(key),
			formatCellValue(data[key]),
		})
	}
	t.Render()
}

// formatTableFromArray creates a table from an array of objects. Columns
// are the keys of the first object.
func (p Printer) formatTableFromArray(data []interface{}) {
	if len(data) == 0 {
		fmt.Fprintln(p.Out, text.FgYellow.Sprint("No items found"))
		return
	}

	first, ok := data[0].(map[string]interface{})
	if !ok {
		for _, item := range data {
			fmt.Fprintln(p.Out, item)
		}
		return
	}

	columns := sortedKeys(first)
	t := p.newTable()
	headers := make(table.Row, len(columns))
	for i, col := range columns {
		headers[i] = text.FgHiCyan.Sprint(strings.ToUpper(col))
	}
	t.AppendHeader(headers)

	for _, item := range data {
		itemMap, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		row := make(table.Row, len(columns))
		for i, col := range columns {
			row[i] = formatCellValue(itemMap[col])
		}
		t.AppendRow(row)
	}
	t.Render()
}

// formatCellValue flattens nested objects to "key=value" pairs.
func formatCellValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return text.FgHiBlack.Sprint("-")
	case bool:
		if v {
			return text.FgGreen.Sprint("true")
		}
		return text.FgRed.Sprint("false")
	case map[string]interface{}:
		var parts []string
		for _, key := range sortedKeys(v) {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v[key]))
		}
		return strings.Join(parts, " ")
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, "\n")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
