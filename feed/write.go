package feed

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/orb/market"
)

var barHeader = []string{
	"timestamp", "open", "high", "low", "close", "volume",
	"ATR_14", "Avg_Volume_14d", "Relative_Volume",
}

// WriteBars writes a series with its indicator columns, the shape
// ReadBars parses back.
func WriteBars(w io.Writer, s *market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(barHeader); err != nil {
		return err
	}
	for _, b := range s.Bars {
		err := cw.Write([]string{
			b.Time.Format(time.RFC3339),
			num(b.Open), num(b.High), num(b.Low), num(b.Close), num(b.Volume),
			num(b.ATR14), num(b.AvgVolume), num(b.RelVolume),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveBars writes a series to a file.
func SaveBars(path string, s *market.Series) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return WriteBars(fh, s)
}

func num(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
