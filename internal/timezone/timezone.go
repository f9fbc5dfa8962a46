package timezone

import "time"

const DefaultTimezone = "America/Sao_Paulo"

func Location(tz string) *time.Location {
	if tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, _ := time.LoadLocation(DefaultTimezone)
	return loc
}

func Now() time.Time {
	return time.Now().In(Location(DefaultTimezone))
}

// Today trunca o instante para o início do dia no fuso local.
// Datas de evento, retirada e devolução são comparadas sempre por dia.
func Today(now time.Time) time.Time {
	y, m, d := now.In(Location(DefaultTimezone)).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Location(DefaultTimezone))
}

// Clock permite injetar o relógio nos casos de uso, mantendo as
// regras de atraso e recusa automática testáveis.
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return Now() }
