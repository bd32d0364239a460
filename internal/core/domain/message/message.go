package message

import "time"

type Kind string

const (
	KindBase              Kind = "base"
	KindText              Kind = "text"
	KindAudio             Kind = "audio"
	KindDocument          Kind = "document"
	KindGame              Kind = "game"
	KindPhoto             Kind = "photo"
	KindSticker           Kind = "sticker"
	KindVideo             Kind = "video"
	KindVideoNote         Kind = "video_note"
	KindUsersJoined       Kind = "users_joined"
	KindUserLeft          Kind = "user_left"
	KindNewChatTitle      Kind = "new_chat_title"
	KindNewChatPhoto      Kind = "new_chat_photo"
	KindChatPhotoDeleted  Kind = "chat_photo_deleted"
	KindGroupCreated      Kind = "group_created"
	KindSupergroupCreated Kind = "supergroup_created"
	KindChannelCreated    Kind = "channel_created"
	KindChatMigratedTo    Kind = "chat_migrated_to"
	KindChatMigratedFrom  Kind = "chat_migrated_from"
	KindMessagePinned     Kind = "message_pinned"
	KindInvoice           Kind = "invoice"
	KindContact           Kind = "contact"
	KindLocation          Kind = "location"
	KindVenue             Kind = "venue"
)

// Message is the closed set of decoded message variants. Every variant embeds Base; values are
// built once by Decode and must not be modified afterwards.
type Message interface {
	Kind() Kind
	Header() *Base
}

// Base carries the fields shared by every variant. It is also the fallback variant for payloads
// that match no known shape, and the type of every nested message reference.
type Base struct {
	ID                   int64
	Sender               *User
	Chat                 Chat
	Date                 time.Time
	ForwardFrom          *User
	ForwardFromChat      *Chat
	ForwardFromMessageID int64
	ForwardDate          time.Time
	ReplyTo              *Base
	EditDate             time.Time
}

func (*Base) Kind() Kind      { return KindBase }
func (b *Base) Header() *Base { return b }

type Text struct {
	Base
	Text     string
	Entities []Entity
}

func (*Text) Kind() Kind { return KindText }

type Audio struct {
	Base
	FileID    string
	Duration  int
	Performer string
	Title     string
	MimeType  string
	FileSize  int64
	Caption   string
}

func (*Audio) Kind() Kind { return KindAudio }

type Document struct {
	Base
	FileID    string
	Thumbnail *PhotoSize
	Caption   string
	FileName  string
	MimeType  string
	FileSize  int64
}

func (*Document) Kind() Kind { return KindDocument }

type Game struct {
	Base
	Title       string
	Description string
	Photo       []PhotoSize
	Text        string
	Entities    []Entity
}

func (*Game) Kind() Kind { return KindGame }

// Photo keeps every size in the order received. Largest is chosen by area; Thumbnail is the
// smallest size and is only set when more than one size was sent.
type Photo struct {
	Base
	Sizes     []PhotoSize
	Largest   *PhotoSize
	Thumbnail *PhotoSize
	Caption   string
}

func (*Photo) Kind() Kind { return KindPhoto }

type Sticker struct {
	Base
	FileID    string
	Width     int
	Height    int
	Thumbnail *PhotoSize
	Emoji     string
	FileSize  int64
}

func (*Sticker) Kind() Kind { return KindSticker }

type Video struct {
	Base
	FileID    string
	Width     int
	Height    int
	Duration  int
	Thumbnail *PhotoSize
	MimeType  string
	FileSize  int64
	Caption   string
}

func (*Video) Kind() Kind { return KindVideo }

type VideoNote struct {
	Base
	FileID    string
	Length    int
	Duration  int
	Thumbnail *PhotoSize
	FileSize  int64
}

func (*VideoNote) Kind() Kind { return KindVideoNote }

type UsersJoined struct {
	Base
	Users []User
}

func (*UsersJoined) Kind() Kind { return KindUsersJoined }

type UserLeft struct {
	Base
	User User
}

func (*UserLeft) Kind() Kind { return KindUserLeft }

type NewChatTitle struct {
	Base
	Title string
}

func (*NewChatTitle) Kind() Kind { return KindNewChatTitle }

type NewChatPhoto struct {
	Base
	Photo []PhotoSize
}

func (*NewChatPhoto) Kind() Kind { return KindNewChatPhoto }

type ChatPhotoDeleted struct{ Base }

func (*ChatPhotoDeleted) Kind() Kind { return KindChatPhotoDeleted }

type GroupCreated struct{ Base }

func (*GroupCreated) Kind() Kind { return KindGroupCreated }

type SupergroupCreated struct{ Base }

func (*SupergroupCreated) Kind() Kind { return KindSupergroupCreated }

type ChannelCreated struct{ Base }

func (*ChannelCreated) Kind() Kind { return KindChannelCreated }

// ChatMigratedTo is posted in a group that was upgraded; ChatID is the new supergroup.
type ChatMigratedTo struct {
	Base
	ChatID int64
}

func (*ChatMigratedTo) Kind() Kind { return KindChatMigratedTo }

// ChatMigratedFrom is posted in the new supergroup; ChatID is the group it replaced.
type ChatMigratedFrom struct {
	Base
	ChatID int64
}

func (*ChatMigratedFrom) Kind() Kind { return KindChatMigratedFrom }

type MessagePinned struct {
	Base
	Message *Base
}

func (*MessagePinned) Kind() Kind { return KindMessagePinned }

type Invoice struct {
	Base
	Title          string
	Description    string
	StartParameter string
	Currency       string
	TotalAmount    int64
}

func (*Invoice) Kind() Kind { return KindInvoice }

type Contact struct {
	Base
	PhoneNumber string
	FirstName   string
	LastName    string
	UserID      int64
}

func (*Contact) Kind() Kind { return KindContact }

type Location struct {
	Base
	GeoPoint
}

func (*Location) Kind() Kind { return KindLocation }

type Venue struct {
	Base
	Point        GeoPoint
	Title        string
	Address      string
	FoursquareID string
}

func (*Venue) Kind() Kind { return KindVenue }
