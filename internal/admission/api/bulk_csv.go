package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ms-admission/internal/models"
)

// Uploaded batches are CSV with a declared header row. Column names are
// matched case-insensitively; header order is free.
const (
	colTicketID     = "ticket_id"
	colCustomer     = "customer"
	colVisitorCount = "visitor_count"
)

func requiredColumns(op models.TransitionKind) []string {
	if op == models.TransitionSell {
		return []string{colTicketID, colCustomer}
	}
	return []string{colTicketID, colVisitorCount}
}

// ParseBulkCSV reads an uploaded batch into rows for the given operation.
// Row numbers are 1-based data positions (the header is row 0) so rejects
// can name the offending line.
func ParseBulkCSV(r io.Reader, op models.TransitionKind) ([]models.BulkRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns(op) {
		if _, ok := colIdx[required]; !ok {
			return nil, fmt.Errorf("file must have columns: %s", strings.Join(requiredColumns(op), ", "))
		}
	}

	var rows []models.BulkRow
	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++

		row := models.BulkRow{
			Row:      line,
			TicketID: strings.TrimSpace(record[colIdx[colTicketID]]),
		}
		switch op {
		case models.TransitionSell:
			row.Customer = strings.TrimSpace(record[colIdx[colCustomer]])
		case models.TransitionCheckIn:
			raw := strings.TrimSpace(record[colIdx[colVisitorCount]])
			seats, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d: visitor_count %q is not a number", line, raw)
			}
			row.VisitorSeats = seats
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteRejectsCSV renders the rejection buckets of a batch as a downloadable
// report.
func WriteRejectsCSV(w io.Writer, result *models.BulkResult) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"row", "ticket_id", "reason"}); err != nil {
		return err
	}
	for _, reject := range result.Rejects() {
		err := writer.Write([]string{
			strconv.Itoa(reject.Row),
			reject.TicketID,
			reject.Reason,
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
