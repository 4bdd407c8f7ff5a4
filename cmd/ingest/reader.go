package main

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"dupfinder/internal/models"
)

// Input formats
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
)

var csvColumns = []string{"id", "title", "body", "accepted_answer_body"}

// detectFormat picks a format from the file extension when none is given
func detectFormat(path, format string) (string, error) {
	if format != "" {
		format = strings.ToLower(format)
		switch format {
		case FormatJSON, FormatJSONL, FormatCSV:
			return format, nil
		}
		return "", fmt.Errorf("unknown format %q (want json, jsonl or csv)", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("cannot detect format of %s, pass -format", path)
}

// readRows parses every row of r in the given format
func readRows(r io.Reader, format string) ([]models.RawTicket, error) {
	switch format {
	case FormatJSON:
		return readJSON(r)
	case FormatJSONL:
		return readJSONL(r)
	case FormatCSV:
		return readCSV(r)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func readJSON(r io.Reader) ([]models.RawTicket, error) {
	var rows []models.RawTicket
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode JSON array: %w", err)
	}
	return rows, nil
}

func readJSONL(r io.Reader) ([]models.RawTicket, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows []models.RawTicket
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var row models.RawTicket
		if err := json.Unmarshal([]byte(text), &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([]models.RawTicket, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range csvColumns[:3] {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing column %q", required)
		}
	}
	answerCol, hasAnswer := index["accepted_answer_body"]

	var rows []models.RawTicket
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		field := func(col int) string {
			if col < len(record) {
				return record[col]
			}
			return ""
		}

		id, err := strconv.ParseInt(strings.TrimSpace(field(index["id"])), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid id: %w", line, err)
		}

		row := models.RawTicket{
			ID:    id,
			Title: field(index["title"]),
			Body:  field(index["body"]),
		}
		if hasAnswer {
			if answer := field(answerCol); answer != "" {
				row.AcceptedAnswerBody = &answer
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
