package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/ashfall/tdx/internal/view"
)

var (
	_ list.Item = readingItem{}
	_ list.Item = anomalyItem{}
)

// readingItem wraps [view.ReadingRow] to implement [list.Item].
type readingItem struct {
	row view.ReadingRow
}

func (i readingItem) FilterValue() string { return i.row.Time }
func (i readingItem) Title() string {
	return fmt.Sprintf("%s  %s", i.row.Time, i.row.Temperature)
}
func (i readingItem) Description() string {
	return fmt.Sprintf("humidity %s • battery %s • motion %s", i.row.Humidity, i.row.Battery, i.row.Motion)
}

// anomalyItem wraps an anomalous [view.ReadingRow] to implement [list.Item].
type anomalyItem struct {
	row view.ReadingRow
}

func (i anomalyItem) FilterValue() string { return i.row.Time }
func (i anomalyItem) Title() string {
	return fmt.Sprintf("⚠ %s  %s", i.row.Time, i.row.Temperature)
}
func (i anomalyItem) Description() string {
	return fmt.Sprintf("humidity %s • battery %s • motion %s", i.row.Humidity, i.row.Battery, i.row.Motion)
}

func readingItems(rows []view.ReadingRow) []list.Item {
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = readingItem{row: row}
	}
	return items
}

func anomalyItems(rows []view.ReadingRow) []list.Item {
	items := make([]list.Item, len(rows))
	for i, row := range rows {
		items[i] = anomalyItem{row: row}
	}
	return items
}
