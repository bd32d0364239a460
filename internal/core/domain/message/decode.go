package message

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

var ErrMissingField = errors.New("missing required field")

// Nested objects decode into the client library's models. The wrappers below only add the legacy
// fields older payloads still carry and the models have dropped.

type wireChat struct {
	models.Chat
	AllMembersAreAdministrators bool `json:"all_members_are_administrators"`
}

type wireDocument struct {
	models.Document
	Thumb *models.PhotoSize `json:"thumb"`
}

type wireSticker struct {
	models.Sticker
	Thumb *models.PhotoSize `json:"thumb"`
}

type wireVideo struct {
	models.Video
	Thumb *models.PhotoSize `json:"thumb"`
}

type wireVideoNote struct {
	models.VideoNote
	Thumb *models.PhotoSize `json:"thumb"`
}

type wireMessage struct {
	MessageID            *int64          `json:"message_id"`
	From                 *models.User    `json:"from"`
	Date                 *int64          `json:"date"`
	Chat                 *wireChat       `json:"chat"`
	ForwardFrom          *models.User    `json:"forward_from"`
	ForwardFromChat      *wireChat       `json:"forward_from_chat"`
	ForwardFromMessageID int64           `json:"forward_from_message_id"`
	ForwardDate          int64           `json:"forward_date"`
	ReplyToMessage       json.RawMessage `json:"reply_to_message"`
	EditDate             int64           `json:"edit_date"`

	Text              string                 `json:"text"`
	Entities          []models.MessageEntity `json:"entities"`
	Caption           string                 `json:"caption"`
	Audio             *models.Audio          `json:"audio"`
	Document          *wireDocument          `json:"document"`
	Game              *models.Game           `json:"game"`
	Photo             []models.PhotoSize     `json:"photo"`
	Sticker           *wireSticker           `json:"sticker"`
	Video             *wireVideo             `json:"video"`
	VideoNote         *wireVideoNote         `json:"video_note"`
	NewChatMembers    []models.User          `json:"new_chat_members"`
	NewChatMember     *models.User           `json:"new_chat_member"`
	LeftChatMember    *models.User           `json:"left_chat_member"`
	Contact           *models.Contact        `json:"contact"`
	Location          *models.Location       `json:"location"`
	Venue             *models.Venue          `json:"venue"`
	NewChatTitle      string                 `json:"new_chat_title"`
	NewChatPhoto      []models.PhotoSize     `json:"new_chat_photo"`
	MigrateToChatID   int64                  `json:"migrate_to_chat_id"`
	MigrateFromChatID int64                  `json:"migrate_from_chat_id"`
	PinnedMessage     json.RawMessage        `json:"pinned_message"`
	Invoice           *models.Invoice        `json:"invoice"`
}

type shape struct {
	key   string
	build func(b Base, w *wireMessage) (Message, error)
}

// shapes is checked top to bottom and the first key present in the payload wins. The order
// decides the variant when a payload carries more than one shape key, so it must not be
// rearranged.
var shapes = []shape{
	{"text", func(b Base, w *wireMessage) (Message, error) {
		return &Text{Base: b, Text: w.Text, Entities: entities(w.Entities)}, nil
	}},
	{"audio", func(b Base, w *wireMessage) (Message, error) {
		a := orEmpty(w.Audio)
		return &Audio{Base: b, FileID: a.FileID, Duration: a.Duration, Performer: a.Performer, Title: a.Title,
			MimeType: a.MimeType, FileSize: a.FileSize, Caption: w.Caption}, nil
	}},
	{"document", func(b Base, w *wireMessage) (Message, error) {
		d := orEmpty(w.Document)
		return &Document{Base: b, FileID: d.FileID, Thumbnail: thumbnail(d.Thumbnail, d.Thumb), Caption: w.Caption,
			FileName: d.FileName, MimeType: d.MimeType, FileSize: d.FileSize}, nil
	}},
	{"game", func(b Base, w *wireMessage) (Message, error) {
		g := orEmpty(w.Game)
		return &Game{Base: b, Title: g.Title, Description: g.Description, Photo: photoSizes(g.Photo),
			Text: g.Text, Entities: entities(g.TextEntities)}, nil
	}},
	{"photo", func(b Base, w *wireMessage) (Message, error) {
		return newPhoto(b, w), nil
	}},
	{"sticker", func(b Base, w *wireMessage) (Message, error) {
		st := orEmpty(w.Sticker)
		return &Sticker{Base: b, FileID: st.FileID, Width: st.Width, Height: st.Height,
			Thumbnail: thumbnail(st.Thumbnail, st.Thumb), Emoji: st.Emoji, FileSize: int64(st.FileSize)}, nil
	}},
	{"video", func(b Base, w *wireMessage) (Message, error) {
		v := orEmpty(w.Video)
		return &Video{Base: b, FileID: v.FileID, Width: v.Width, Height: v.Height, Duration: v.Duration,
			Thumbnail: thumbnail(v.Thumbnail, v.Thumb), MimeType: v.MimeType, FileSize: v.FileSize, Caption: w.Caption}, nil
	}},
	{"video_note", func(b Base, w *wireMessage) (Message, error) {
		v := orEmpty(w.VideoNote)
		return &VideoNote{Base: b, FileID: v.FileID, Length: v.Length, Duration: v.Duration,
			Thumbnail: thumbnail(v.Thumbnail, v.Thumb), FileSize: int64(v.FileSize)}, nil
	}},
	{"new_chat_members", func(b Base, w *wireMessage) (Message, error) {
		return &UsersJoined{Base: b, Users: users(w.NewChatMembers)}, nil
	}},
	// the singular form is an older spelling of the same event
	{"new_chat_member", func(b Base, w *wireMessage) (Message, error) {
		var joined []models.User
		if w.NewChatMember != nil {
			joined = []models.User{*w.NewChatMember}
		}
		return &UsersJoined{Base: b, Users: users(joined)}, nil
	}},
	{"left_chat_member", func(b Base, w *wireMessage) (Message, error) {
		left := &UserLeft{Base: b}
		if u := user(w.LeftChatMember); u != nil {
			left.User = *u
		}
		return left, nil
	}},
	{"contact", func(b Base, w *wireMessage) (Message, error) {
		c := orEmpty(w.Contact)
		return &Contact{Base: b, PhoneNumber: c.PhoneNumber, FirstName: c.FirstName, LastName: c.LastName,
			UserID: c.UserID}, nil
	}},
	{"location", func(b Base, w *wireMessage) (Message, error) {
		return &Location{Base: b, GeoPoint: geoPoint(orEmpty(w.Location))}, nil
	}},
	{"venue", func(b Base, w *wireMessage) (Message, error) {
		v := orEmpty(w.Venue)
		return &Venue{Base: b, Point: geoPoint(&v.Location), Title: v.Title, Address: v.Address,
			FoursquareID: v.FoursquareID}, nil
	}},
	{"new_chat_title", func(b Base, w *wireMessage) (Message, error) {
		return &NewChatTitle{Base: b, Title: w.NewChatTitle}, nil
	}},
	{"new_chat_photo", func(b Base, w *wireMessage) (Message, error) {
		return &NewChatPhoto{Base: b, Photo: photoSizes(w.NewChatPhoto)}, nil
	}},
	{"delete_chat_photo", func(b Base, _ *wireMessage) (Message, error) {
		return &ChatPhotoDeleted{Base: b}, nil
	}},
	{"group_chat_created", func(b Base, _ *wireMessage) (Message, error) {
		return &GroupCreated{Base: b}, nil
	}},
	{"supergroup_chat_created", func(b Base, _ *wireMessage) (Message, error) {
		return &SupergroupCreated{Base: b}, nil
	}},
	{"channel_chat_created", func(b Base, _ *wireMessage) (Message, error) {
		return &ChannelCreated{Base: b}, nil
	}},
	{"migrate_to_chat_id", func(b Base, w *wireMessage) (Message, error) {
		return &ChatMigratedTo{Base: b, ChatID: w.MigrateToChatID}, nil
	}},
	{"migrate_from_chat_id", func(b Base, w *wireMessage) (Message, error) {
		return &ChatMigratedFrom{Base: b, ChatID: w.MigrateFromChatID}, nil
	}},
	{"pinned_message", func(b Base, w *wireMessage) (Message, error) {
		pinned, err := DecodeBase(w.PinnedMessage)
		if err != nil {
			return nil, fmt.Errorf("pinned message: %w", err)
		}
		return &MessagePinned{Base: b, Message: pinned}, nil
	}},
	{"invoice", func(b Base, w *wireMessage) (Message, error) {
		i := orEmpty(w.Invoice)
		return &Invoice{Base: b, Title: i.Title, Description: i.Description, StartParameter: i.StartParameter,
			Currency: i.Currency, TotalAmount: int64(i.TotalAmount)}, nil
	}},
}

// Decode turns a message payload into the first variant, in shape priority order, whose key is
// present. Payloads with no known shape key decode to *Base.
func Decode(raw json.RawMessage) (Message, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("failed to decode message payload: %w", err)
	}

	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode message payload: %w", err)
	}

	base, err := newBase(&w)
	if err != nil {
		return nil, err
	}

	for _, s := range shapes {
		if _, ok := keys[s.key]; !ok {
			continue
		}

		msg, err := s.build(*base, &w)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s message: %w", s.key, err)
		}

		return msg, nil
	}

	log.Debug().Int64("messageId", base.ID).Msg("no known payload shape, using base message")

	return base, nil
}

// DecodeBase decodes only the common message fields. Nested references (replies, pinned messages)
// always go through here and are never specialized.
func DecodeBase(raw json.RawMessage) (*Base, error) {
	var w wireMessage
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("failed to decode message payload: %w", err)
	}

	return newBase(&w)
}

// DecodeUser decodes a standalone user object, such as the result of getMe.
func DecodeUser(raw json.RawMessage) (User, error) {
	var w models.User
	if err := json.Unmarshal(raw, &w); err != nil {
		return User{}, fmt.Errorf("failed to decode user: %w", err)
	}
	if w.ID == 0 {
		return User{}, fmt.Errorf("%w: id", ErrMissingField)
	}

	return *user(&w), nil
}

func newBase(w *wireMessage) (*Base, error) {
	if w.MessageID == nil {
		return nil, fmt.Errorf("%w: message_id", ErrMissingField)
	}
	if w.Date == nil {
		return nil, fmt.Errorf("%w: date", ErrMissingField)
	}
	if w.Chat == nil {
		return nil, fmt.Errorf("%w: chat", ErrMissingField)
	}

	c, err := chat(w.Chat)
	if err != nil {
		return nil, err
	}

	b := &Base{
		ID:                   *w.MessageID,
		Sender:               user(w.From),
		Chat:                 *c,
		Date:                 fromUnix(*w.Date),
		ForwardFrom:          user(w.ForwardFrom),
		ForwardFromMessageID: w.ForwardFromMessageID,
	}

	if w.ForwardFromChat != nil {
		fc, err := chat(w.ForwardFromChat)
		if err != nil {
			return nil, fmt.Errorf("forward_from_chat: %w", err)
		}
		b.ForwardFromChat = fc
	}
	if w.ForwardDate != 0 {
		b.ForwardDate = fromUnix(w.ForwardDate)
	}
	if w.EditDate != 0 {
		b.EditDate = fromUnix(w.EditDate)
	}
	if isPresent(w.ReplyToMessage) {
		reply, err := DecodeBase(w.ReplyToMessage)
		if err != nil {
			return nil, fmt.Errorf("reply_to_message: %w", err)
		}
		b.ReplyTo = reply
	}

	return b, nil
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func chat(w *wireChat) (*Chat, error) {
	t := ChatType(w.Type)
	if !t.Valid() {
		return nil, fmt.Errorf("unknown chat type %q", w.Type)
	}

	return &Chat{
		ID:                          w.ID,
		Type:                        t,
		Title:                       w.Title,
		Username:                    w.Username,
		FirstName:                   w.FirstName,
		LastName:                    w.LastName,
		AllMembersAreAdministrators: w.AllMembersAreAdministrators,
	}, nil
}

func user(w *models.User) *User {
	if w == nil {
		return nil
	}

	return &User{
		ID:           w.ID,
		IsBot:        w.IsBot,
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		Username:     w.Username,
		LanguageCode: w.LanguageCode,
	}
}

func users(ws []models.User) []User {
	out := make([]User, 0, len(ws))
	for i := range ws {
		out = append(out, *user(&ws[i]))
	}

	return out
}

func photoSize(w *models.PhotoSize) *PhotoSize {
	if w == nil {
		return nil
	}

	return &PhotoSize{FileID: w.FileID, Width: w.Width, Height: w.Height, FileSize: int64(w.FileSize)}
}

func photoSizes(ws []models.PhotoSize) []PhotoSize {
	out := make([]PhotoSize, 0, len(ws))
	for i := range ws {
		out = append(out, *photoSize(&ws[i]))
	}

	return out
}

// thumbnail prefers the current field and falls back to the legacy "thumb".
func thumbnail(current, legacy *models.PhotoSize) *PhotoSize {
	if current != nil {
		return photoSize(current)
	}

	return photoSize(legacy)
}

func geoPoint(l *models.Location) GeoPoint {
	return GeoPoint{Longitude: l.Longitude, Latitude: l.Latitude}
}

func entities(ws []models.MessageEntity) []Entity {
	out := make([]Entity, 0, len(ws))
	for i := range ws {
		w := &ws[i]
		t := EntityType(w.Type)
		if !t.Valid() {
			log.Warn().Str("type", string(w.Type)).Msg("dropping text entity of unknown type")
			continue
		}

		out = append(out, Entity{Type: t, Offset: w.Offset, Length: w.Length, URL: w.URL, User: user(w.User)})
	}

	return out
}

// orEmpty lets a variant whose payload is present but null decode with zero values.
func orEmpty[T any](p *T) *T {
	if p == nil {
		return new(T)
	}

	return p
}

func newPhoto(b Base, w *wireMessage) *Photo {
	sizes := photoSizes(w.Photo)
	p := &Photo{Base: b, Sizes: sizes, Caption: w.Caption}
	if len(sizes) == 0 {
		return p
	}

	largest, smallest := 0, 0
	for i, s := range sizes {
		if s.Area() > sizes[largest].Area() {
			largest = i
		}
		if s.Area() < sizes[smallest].Area() {
			smallest = i
		}
	}

	l := sizes[largest]
	p.Largest = &l

	if len(sizes) > 1 {
		s := sizes[smallest]
		p.Thumbnail = &s
	}

	return p
}
