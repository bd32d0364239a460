package module

import (
	"context"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"
	"strconv"
	"strings"
)

const (
	maxDice  = 50000
	maxSides = 50000

	tooManyDice  = "Help, I can't hold this many dice"
	tooManySides = "Help, these dice have too many sides"
	invalidRoll  = "Invalid input, try 6 or 1d20"
)

// Roll throws NdS dice. A bare number S means 1dS; no argument means 1d6.
type Roll struct {
	nop
	intn func(n int) int
}

func NewRoll(r port.CommandRegistry, intn func(n int) int) *Roll {
	roll := &Roll{intn: intn}
	r.Register("roll", roll.roll)

	return roll
}

func (r *Roll) roll(_ context.Context, cmd domain.Command) (string, error) {
	if len(cmd.Args) == 0 {
		return strconv.Itoa(r.intn(6) + 1), nil
	}

	parts := strings.Split(cmd.Args[0], "d")
	if len(parts) < 2 {
		parts = []string{"1", parts[0]}
	}

	dice, err := strconv.Atoi(parts[0])
	if err != nil || dice < 1 {
		return invalidRoll, nil
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil || sides < 1 {
		return invalidRoll, nil
	}

	if dice > maxDice {
		return tooManyDice, nil
	}
	if sides > maxSides {
		return tooManySides, nil
	}

	total := 0
	for range dice {
		total += r.intn(sides) + 1
	}

	return strconv.Itoa(total), nil
}
