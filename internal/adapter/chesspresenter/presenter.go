package chesspresenter

import (
	"strings"
)

// Presenter delivers formatted messages and board images without coupling to the command layer.
type Presenter struct {
	sendMessage func(message string) error
	sendImage   func(png []byte) error
}

func NewPresenter(sendMessage func(message string) error, sendImage func(png []byte) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

// Board sends message, then the board image when one is given.
func (p *Presenter) Board(message string, png []byte) error {
	if p == nil {
		return nil
	}

	if text := strings.TrimSpace(message); text != "" && p.sendMessage != nil {
		if err := p.sendMessage(message); err != nil {
			return err
		}
	}

	if len(png) > 0 && p.sendImage != nil {
		if err := p.sendImage(png); err != nil {
			return err
		}
	}

	return nil
}
