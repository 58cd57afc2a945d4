package stock

import (
	"github.com/ahmethakanbesel/stockseries/internal/apperror"
	"github.com/ahmethakanbesel/stockseries/internal/calendar"
	"github.com/ahmethakanbesel/stockseries/internal/scraper"
)

const maxSymbolLen = 20

type LoadRequest struct {
	Source   string
	Symbol   string
	From     calendar.Date
	To       calendar.Date
	Interval scraper.Interval
}

func (r LoadRequest) Validate() *apperror.AppError {
	if r.Source == "" {
		return apperror.New(apperror.BadRequest, "source is required")
	}
	if r.Symbol == "" || len(r.Symbol) > maxSymbolLen {
		return apperror.New(apperror.BadRequest, "symbol must be 1 to 20 characters")
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return apperror.New(apperror.BadRequest, "from must not be after to")
	}
	if _, err := scraper.ParseInterval(string(r.Interval)); err != nil {
		return apperror.New(apperror.BadRequest, "interval must be daily, weekly or monthly")
	}
	return nil
}
