package client

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"golang.design/x/clipboard"

	"black-oil/internal/store"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// CopyToClipboard writes text to the system clipboard. The clipboard is
// initialised on first use; headless systems return an error.
func CopyToClipboard(data []byte) error {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", clipboardErr)
	}
	clipboard.Write(clipboard.FmtText, data)
	return nil
}

var historyHeader = []string{"day", "category", "message", "amount"}

// WriteHistoryCSV writes one row per day total and per event.
func WriteHistoryCSV(w io.Writer, reports []*store.DayReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return err
	}
	for _, r := range reports {
		day := strconv.Itoa(r.Day)
		rows := [][]string{
			{day, "production", "Crude produced", strconv.Itoa(r.Production)},
			{day, "refined", "Petrol refined", strconv.Itoa(r.Refined)},
			{day, "contract", "Contract barrels delivered", strconv.Itoa(r.ContractDelivered)},
			{day, "maintenance", "Maintenance paid", strconv.Itoa(r.MaintenanceCost)},
			{day, "interest", "Loan interest", strconv.Itoa(r.InterestCost)},
			{day, "cash", "Closing cash", strconv.Itoa(r.Cash)},
		}
		for _, e := range r.Events {
			rows = append(rows, []string{day, string(e.Kind), e.Message, strconv.Itoa(e.Amount)})
		}
		if err := cw.WriteAll(rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveHistoryCSV writes the history to a file, creating its directory.
func SaveHistoryCSV(path string, reports []*store.DayReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteHistoryCSV(f, reports); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
