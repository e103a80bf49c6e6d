package source

import "time"

// Raw row types as they come off the wire, before normalization. Nullable
// columns are pointers; a failed scan is fatal for the whole source.

type UserRow struct {
	ID       int64
	Username string
	Email    string
}

type ConsentRow struct {
	UserID    int64
	Value     string
	UpdatedAt time.Time
}

type GroupMemberRow struct {
	GroupID int64
	UserID  int64
}

type GroupRow struct {
	ID         int64
	Name       string
	Visibility int
}

type CategoryRow struct {
	ID               int64
	Name             string
	ReadRestricted   bool
	ParentCategoryID *int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CategoryGroupRow struct {
	CategoryID int64
	GroupID    int64
}

type TagRow struct {
	ID         int64
	Name       string
	TopicCount int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TopicRow struct {
	ID         int64
	Title      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	UserID     *int64
	CategoryID *int64
}

type AllowedUserRow struct {
	TopicID int64
	UserID  int64
}

type TopicTagRow struct {
	TopicID int64
	TagID   int64
}

type PostRow struct {
	ID         int64
	UserID     *int64
	TopicID    int64
	PostNumber int64
	Raw        string
	Cooked     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  *time.Time
	Hidden     bool
	WordCount  *int64
	Wiki       bool
	Reads      int64
	Score      float64
	LikeCount  int64
	ReplyCount int64
	QuoteCount int64
}

type ReplyRow struct {
	PostID      int64
	ReplyPostID int64
}

type QuoteRow struct {
	PostID       int64
	QuotedPostID int64
}

type LikeRow struct {
	PostID int64
	UserID int64
}

type LanguageRow struct {
	ID     int64
	Name   string
	Locale string
}

type CodeRow struct {
	ID               int64
	Description      *string
	CreatorID        int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Ancestry         *string
	AnnotationsCount int64
}

type CodeNameRow struct {
	ID         int64
	Name       string
	CodeID     int64
	LanguageID int64
	CreatedAt  time.Time
}

type AnnotationRow struct {
	ID        int64
	Text      *string
	Quote     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	CodeID    *int64
	PostID    int64
	CreatorID int64
	Type      string
	TopicID   int64
}

// RawData bundles every row set fetched from one source database.
type RawData struct {
	SiteURL        string
	Users          []UserRow
	Consents       []ConsentRow
	GroupMembers   []GroupMemberRow
	Groups         []GroupRow
	Categories     []CategoryRow
	CategoryGroups []CategoryGroupRow
	Tags           []TagRow
	Topics         []TopicRow
	AllowedUsers   []AllowedUserRow
	TopicTags      []TopicTagRow
	Posts          []PostRow
	Replies        []ReplyRow
	Quotes         []QuoteRow
	Likes          []LikeRow
	Languages      []LanguageRow
	Codes          []CodeRow
	CodeNames      []CodeNameRow
	Annotations    []AnnotationRow
}
