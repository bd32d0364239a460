package message

import (
	"encoding/json"
	"time"

	"github.com/go-telegram/bot/models"
)

// Update is one raw event pulled from the remote service. Raw holds the complete update object,
// including the update_id.
type Update struct {
	ID  int64
	Raw json.RawMessage

	fields map[string]json.RawMessage
}

type User struct {
	ID           int64
	IsBot        bool
	FirstName    string
	LastName     string
	Username     string
	LanguageCode string
}

type ChatType string

const (
	ChatPrivate    = ChatType(models.ChatTypePrivate)
	ChatGroup      = ChatType(models.ChatTypeGroup)
	ChatSupergroup = ChatType(models.ChatTypeSupergroup)
	ChatChannel    = ChatType(models.ChatTypeChannel)
)

func (t ChatType) Valid() bool {
	switch t {
	case ChatPrivate, ChatGroup, ChatSupergroup, ChatChannel:
		return true
	default:
		return false
	}
}

type Chat struct {
	ID                          int64
	Type                        ChatType
	Title                       string
	Username                    string
	FirstName                   string
	LastName                    string
	AllMembersAreAdministrators bool
}

type EntityType string

// The entity types this bot understands. Newer types are dropped while decoding.
const (
	EntityMention     = EntityType(models.MessageEntityTypeMention)
	EntityHashtag     = EntityType(models.MessageEntityTypeHashtag)
	EntityBotCommand  = EntityType(models.MessageEntityTypeBotCommand)
	EntityURL         = EntityType(models.MessageEntityTypeURL)
	EntityEmail       = EntityType(models.MessageEntityTypeEmail)
	EntityBold        = EntityType(models.MessageEntityTypeBold)
	EntityItalic      = EntityType(models.MessageEntityTypeItalic)
	EntityCode        = EntityType(models.MessageEntityTypeCode)
	EntityPre         = EntityType(models.MessageEntityTypePre)
	EntityTextLink    = EntityType(models.MessageEntityTypeTextLink)
	EntityTextMention = EntityType(models.MessageEntityTypeTextMention)
)

func (t EntityType) Valid() bool {
	switch t {
	case EntityMention, EntityHashtag, EntityBotCommand, EntityURL, EntityEmail, EntityBold,
		EntityItalic, EntityCode, EntityPre, EntityTextLink, EntityTextMention:
		return true
	default:
		return false
	}
}

// Entity marks a span of the owning text. Offset and Length are counted in UTF-16 code units,
// as the remote service reports them.
type Entity struct {
	Type   EntityType
	Offset int
	Length int
	URL    string
	User   *User
}

type PhotoSize struct {
	FileID   string
	Width    int
	Height   int
	FileSize int64
}

func (p PhotoSize) Area() int {
	return p.Width * p.Height
}

type GeoPoint struct {
	Longitude float64
	Latitude  float64
}

func fromUnix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
