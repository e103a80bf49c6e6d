package model

import "time"

// Fixed values applied during normalization. The sentinel user absorbs
// authorship of anything that cannot or must not be attributed.
const (
	SentinelUserID    int64 = -3
	SentinelUsername        = "Unknown"
	PlaceholderBody         = "Removed content"
	PlaceholderTitle        = "Private message"
)

// Group visibility levels as stored by the forum software.
const (
	VisibilityPublic   = 0
	VisibilityLoggedIn = 1
	VisibilityMembers  = 2
	VisibilityStaff    = 3
	VisibilityOwners   = 4
)

// Site identifies one source platform. One per dataset.
type Site struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// User is a forum account. Identity is (ID, platform).
type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Groups         []int64   `json:"groups"`
	Consent        string    `json:"consent"`
	ConsentUpdated time.Time `json:"consent_updated"`
}

// Group is a user group with an ordinal visibility level.
type Group struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Visibility int    `json:"visibility_level"`
}

// Category is a topic container. Categories form a tree via
// ParentCategoryID and grant read access to groups via PermittedGroups.
type Category struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	ReadRestricted   bool      `json:"read_restricted"`
	ParentCategoryID *int64    `json:"parent_category_id"`
	PermittedGroups  []int64   `json:"permitted_groups"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Tag is a free-form topic label.
type Tag struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TopicCount int64     `json:"topic_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Topic is a thread of posts. Message threads keep a placeholder title
// and the sentinel creator.
type Topic struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	UserID          int64     `json:"user_id"`
	CategoryID      *int64    `json:"category_id"`
	IsMessageThread bool      `json:"is_message_thread"`
	ReadRestricted  bool      `json:"read_restricted"`
	Tags            []int64   `json:"tags"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Post is a single contribution to a topic. Private or deleted posts are
// scrubbed during normalization: sentinel author, zeroed counters,
// placeholder body.
type Post struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	TopicID        int64      `json:"topic_id"`
	PostNumber     int64      `json:"post_number"`
	Raw            string     `json:"raw"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	DeletedAt      *time.Time `json:"deleted_at"`
	Hidden         bool       `json:"hidden"`
	WordCount      int64      `json:"word_count"`
	Wiki           bool       `json:"wiki"`
	Reads          int64      `json:"reads"`
	Score          float64    `json:"score"`
	LikeCount      int64      `json:"like_count"`
	ReplyCount     int64      `json:"reply_count"`
	QuoteCount     int64      `json:"quote_count"`
	IsPrivate      bool       `json:"is_private"`
	ReadRestricted bool       `json:"read_restricted"`
	IsReplyTo      []int64    `json:"is_reply_to"`
	QuotesPosts    []int64    `json:"quotes_posts"`
	IsLikedBy      []int64    `json:"is_liked_by"`
}

// Reply records that PostID replies to ReplyToPostID.
type Reply struct {
	ID            int64 `json:"id"`
	PostID        int64 `json:"post_id"`
	ReplyToPostID int64 `json:"reply_post_id"`
}

// Quote records that PostID quotes QuotedPostID.
type Quote struct {
	ID           int64 `json:"id"`
	PostID       int64 `json:"post_id"`
	QuotedPostID int64 `json:"quoted_post_id"`
}

// Like records that UserID liked PostID.
type Like struct {
	ID     int64 `json:"id"`
	PostID int64 `json:"post_id"`
	UserID int64 `json:"user_id"`
}

// Language is an annotation language.
type Language struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

// Code is an ethnographic annotation code. Ancestry is the slash-separated
// list of ancestor code ids, root first, as stored by the annotator.
type Code struct {
	ID               int64     `json:"id"`
	Description      string    `json:"description"`
	CreatorID        int64     `json:"creator_id"`
	Ancestry         *string   `json:"ancestry"`
	AnnotationsCount int64     `json:"annotations_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CodeName localizes a Code in one Language.
type CodeName struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CodeID     int64     `json:"code_id"`
	LanguageID int64     `json:"language_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Annotation attaches a Code to a span of a Post.
type Annotation struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Quote     string    `json:"quote"`
	CodeID    *int64    `json:"code_id"`
	PostID    int64     `json:"post_id"`
	CreatorID int64     `json:"creator_id"`
	Type      string    `json:"type"`
	TopicID   int64     `json:"topic_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats summarizes one extracted dataset. ChunkCounts is filled by the
// partition layer when checkpoints are written.
type Stats struct {
	Users               int            `json:"users"`
	Groups              int            `json:"groups"`
	Categories          int            `json:"categories"`
	Tags                int            `json:"tags"`
	Topics              int            `json:"topics"`
	MessageThreads      int            `json:"pm_threads"`
	TopicsByLostAuthors int            `json:"topics_by_deleted_users"`
	TagsApplied         int            `json:"tags_applied"`
	Posts               int            `json:"posts"`
	PrivatePosts        int            `json:"messages"`
	Languages           string         `json:"annotator_languages"`
	Codes               int            `json:"ethno_codes"`
	CodeNames           int            `json:"ethno_code_names"`
	Annotations         int            `json:"ethno_annotations"`
	ChunkCounts         map[string]int `json:"chunk_sizes,omitempty"`
}

// Dataset is the full normalized output for one platform. Maps are keyed
// by the source-local id; edge records are kept as slices because they
// carry no natural key.
type Dataset struct {
	Site        Site
	Stats       Stats
	Users       map[int64]*User
	Groups      map[int64]*Group
	Categories  map[int64]*Category
	Tags        map[int64]*Tag
	Topics      map[int64]*Topic
	Posts       map[int64]*Post
	Replies     []Reply
	Quotes      []Quote
	Likes       []Like
	Languages   map[int64]*Language
	Codes       map[int64]*Code
	CodeNames   map[int64]*CodeName
	Annotations map[int64]*Annotation
}

// NewDataset returns a Dataset with all maps allocated.
func NewDataset(site Site) *Dataset {
	return &Dataset{
		Site:        site,
		Users:       make(map[int64]*User),
		Groups:      make(map[int64]*Group),
		Categories:  make(map[int64]*Category),
		Tags:        make(map[int64]*Tag),
		Topics:      make(map[int64]*Topic),
		Posts:       make(map[int64]*Post),
		Languages:   make(map[int64]*Language),
		Codes:       make(map[int64]*Code),
		CodeNames:   make(map[int64]*CodeName),
		Annotations: make(map[int64]*Annotation),
	}
}
