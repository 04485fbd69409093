package view

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/ashfall/tdx/internal/models"
	"github.com/ashfall/tdx/internal/shared"
)

// readingsToCSV converts readings to CSV with columns matching the original
// collection pipeline: Time, Battery, Humidity, Motion, Temperature. Values
// keep full stored precision; display rounding never leaks into exports.
func readingsToCSV(readings []models.SensorReading) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Time", "Battery", "Humidity", "Motion", "Temperature"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range readings {
		motion := ""
		if r.Motion != nil {
			motion = strconv.FormatFloat(*r.Motion, 'f', -1, 64)
		}
		record := []string{
			r.Time,
			strconv.FormatFloat(r.Battery, 'f', -1, 64),
			strconv.FormatFloat(r.Humidity, 'f', -1, 64),
			motion,
			strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a snapshot to a Markdown report.
func ExportToMarkdown(snapshot *models.Snapshot) ([]byte, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("no snapshot to export")
	}

	var buf bytes.Buffer
	vm := renderSnapshot(snapshot)

	buf.WriteString("# Sensor telemetry snapshot\n\n")
	buf.WriteString(fmt.Sprintf("**Fetched**: %s\n\n", snapshot.FetchedAt.Format("2006-01-02 15:04:05")))
	buf.WriteString(fmt.Sprintf("**Average temperature**: %s\n", vm.AvgTemperature))
	buf.WriteString(fmt.Sprintf("**Average humidity**: %s\n", vm.AvgHumidity))
	buf.WriteString(fmt.Sprintf("**Average battery**: %s\n", vm.AvgBattery))
	buf.WriteString(fmt.Sprintf("**Prediction**: %s\n", vm.Prediction))
	buf.WriteString(fmt.Sprintf("**Status**: %s\n\n", vm.Health.Label))

	buf.WriteString("## Recent readings\n\n")
	writeMarkdownTable(&buf, vm.Readings)

	buf.WriteString("\n## Anomalies\n\n")
	if len(vm.Anomalies) == 0 {
		buf.WriteString("None.\n")
	} else {
		writeMarkdownTable(&buf, vm.Anomalies)
	}

	return buf.Bytes(), nil
}

func writeMarkdownTable(buf *bytes.Buffer, rows []ReadingRow) {
	buf.WriteString("| Time | Temperature | Humidity | Battery | Motion |\n")
	buf.WriteString("|------|-------------|----------|---------|--------|\n")
	for _, row := range rows {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			row.Time, row.Temperature, row.Humidity, row.Battery, row.Motion))
	}
}

// renderSnapshot formats a snapshot outside any sync state, for exports.
func renderSnapshot(snapshot *models.Snapshot) ViewModel {
	vm := ViewModel{
		AvgTemperature: PlaceholderNA,
		AvgHumidity:    PlaceholderNA,
		AvgBattery:     PlaceholderNA,
		Prediction:     PredictionNotReady,
	}

	if snapshot.Analytics != nil {
		vm.AvgTemperature = formatCelsius(snapshot.Analytics.AvgTemperature)
		vm.AvgHumidity = fmt.Sprintf("%.2f %%", snapshot.Analytics.AvgHumidity)
		vm.AvgBattery = fmt.Sprintf("%.2f V", snapshot.Analytics.AvgBattery)
		vm.Readings = formatReadings(snapshot.Analytics.RecentReadings)
	}
	if snapshot.Prediction != nil && snapshot.Prediction.PredictedNextTemperature != nil {
		vm.Prediction = formatCelsius(*snapshot.Prediction.PredictedNextTemperature)
	}
	vm.Anomalies = formatReadings(snapshot.Anomalies)
	vm.Health = healthIndicator(len(snapshot.Anomalies))

	return vm
}

// ExportResult contains the paths of files created by WriteSnapshotExport.
type ExportResult struct {
	Files []string
}

// WriteSnapshotExport writes a snapshot to disk in the given format.
//
// "csv" produces {base}_readings.csv and {base}_anomalies.csv, "markdown"
// produces {base}.md, and "json" (the default) produces {base}.json with the
// raw snapshot. The base path defaults to snapshot_{unix}.
func WriteSnapshotExport(snapshot *models.Snapshot, format, basePath string) (*ExportResult, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("no snapshot to export")
	}
	if basePath == "" {
		basePath = fmt.Sprintf("snapshot_%d", snapshot.FetchedAt.Unix())
	}

	result := &ExportResult{Files: []string{}}

	switch format {
	case "csv":
		var readings []models.SensorReading
		if snapshot.Analytics != nil {
			readings = snapshot.Analytics.RecentReadings
		}

		readingsCSV, err := readingsToCSV(readings)
		if err != nil {
			return nil, fmt.Errorf("failed to generate readings CSV: %w", err)
		}
		readingsFile := basePath + "_readings.csv"
		if err := os.WriteFile(readingsFile, readingsCSV, 0644); err != nil {
			return nil, fmt.Errorf("failed to write readings CSV: %w", err)
		}
		result.Files = append(result.Files, readingsFile)

		anomaliesCSV, err := readingsToCSV(snapshot.Anomalies)
		if err != nil {
			return nil, fmt.Errorf("failed to generate anomalies CSV: %w", err)
		}
		anomaliesFile := basePath + "_anomalies.csv"
		if err := os.WriteFile(anomaliesFile, anomaliesCSV, 0644); err != nil {
			return nil, fmt.Errorf("failed to write anomalies CSV: %w", err)
		}
		result.Files = append(result.Files, anomaliesFile)

	case "markdown":
		data, err := ExportToMarkdown(snapshot)
		if err != nil {
			return nil, err
		}
		mdFile := basePath + ".md"
		if err := os.WriteFile(mdFile, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write Markdown file: %w", err)
		}
		result.Files = append(result.Files, mdFile)

	case "json", "":
		data, err := shared.MarshalJSON(snapshot, true)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		jsonFile := basePath + ".json"
		if err := os.WriteFile(jsonFile, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write JSON file: %w", err)
		}
		result.Files = append(result.Files, jsonFile)

	default:
		return nil, fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidFlag, format)
	}

	return result, nil
}
