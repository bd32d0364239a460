package module

import (
	"context"
	"horsefax/internal/core/domain"
	"horsefax/internal/core/port"
)

type Heartbeat struct {
	nop
}

func NewHeartbeat(_ port.Bot, r port.CommandRegistry) *Heartbeat {
	r.Register("heartbeat", func(context.Context, domain.Command) (string, error) {
		return "Thump.", nil
	})

	return &Heartbeat{}
}

const cuteImage = "https://derpicdn.net/img/view/2012/1/2/0.jpg"

type Cute struct {
	nop
}

func NewCute(_ port.Bot, r port.CommandRegistry) *Cute {
	r.Register("cute", func(context.Context, domain.Command) (string, error) {
		return cuteImage, nil
	})

	return &Cute{}
}
