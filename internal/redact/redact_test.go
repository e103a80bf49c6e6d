package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forumgraph/internal/model"
)

// fixture builds a dataset with one of everything a policy can drop: a
// system user, a staff-only group, a restricted category, a message thread
// and a hidden post.
func fixture() *model.Dataset {
	ds := model.NewDataset(model.Site{Name: "edgeryders", URL: "https://forum.example.org"})

	ds.Users[1] = &model.User{ID: 1, Username: "alice", Groups: []int64{10, 11}}
	ds.Users[2] = &model.User{ID: 2, Username: "bob", Groups: []int64{}}
	ds.Users[model.SentinelUserID] = &model.User{ID: model.SentinelUserID, Username: model.SentinelUsername, Groups: []int64{}}

	ds.Groups[10] = &model.Group{ID: 10, Name: "members", Visibility: model.VisibilityPublic}
	ds.Groups[11] = &model.Group{ID: 11, Name: "staff", Visibility: model.VisibilityStaff}

	ds.Categories[5] = &model.Category{ID: 5, Name: "general", PermittedGroups: []int64{}}
	ds.Categories[6] = &model.Category{ID: 6, Name: "internal", ReadRestricted: true, PermittedGroups: []int64{11}}

	ds.Tags[7] = &model.Tag{ID: 7, Name: "ethno-open"}

	catPublic, catInternal := int64(5), int64(6)
	ds.Topics[20] = &model.Topic{ID: 20, Title: "Welcome", UserID: 1, CategoryID: &catPublic, Tags: []int64{7}}
	ds.Topics[21] = &model.Topic{ID: 21, Title: "Internal", UserID: 1, CategoryID: &catInternal, ReadRestricted: true, Tags: []int64{}}
	ds.Topics[10] = &model.Topic{ID: 10, Title: model.PlaceholderTitle, UserID: model.SentinelUserID, IsMessageThread: true, ReadRestricted: true, Tags: []int64{}}

	ds.Posts[200] = &model.Post{ID: 200, UserID: 1, TopicID: 20, PostNumber: 1, Raw: "hello", IsReplyTo: []int64{}, QuotesPosts: []int64{}, IsLikedBy: []int64{2}}
	ds.Posts[201] = &model.Post{ID: 201, UserID: 2, TopicID: 20, PostNumber: 2, Raw: "reply", IsReplyTo: []int64{200}, QuotesPosts: []int64{200}, IsLikedBy: []int64{}}
	ds.Posts[210] = &model.Post{ID: 210, UserID: 1, TopicID: 21, PostNumber: 1, Raw: "internal", ReadRestricted: true, IsReplyTo: []int64{}, QuotesPosts: []int64{}, IsLikedBy: []int64{}}
	ds.Posts[211] = &model.Post{ID: 211, UserID: 2, TopicID: 20, PostNumber: 3, Raw: "flagged", Hidden: true, IsReplyTo: []int64{200}, QuotesPosts: []int64{}, IsLikedBy: []int64{}}
	ds.Posts[100] = &model.Post{ID: 100, UserID: model.SentinelUserID, TopicID: 10, PostNumber: 1, Raw: model.PlaceholderBody, IsPrivate: true, ReadRestricted: true, IsReplyTo: []int64{}, QuotesPosts: []int64{}, IsLikedBy: []int64{}}

	ds.Replies = []model.Reply{
		{ID: 0, PostID: 201, ReplyToPostID: 200},
		{ID: 1, PostID: 211, ReplyToPostID: 200},
	}
	ds.Quotes = []model.Quote{
		{ID: 0, PostID: 201, QuotedPostID: 200},
	}
	ds.Likes = []model.Like{
		{ID: 0, PostID: 200, UserID: 2},
		{ID: 1, PostID: 210, UserID: 2},
	}

	ds.Languages[1] = &model.Language{ID: 1, Name: "English", Locale: "en"}
	codeID := int64(50)
	ds.Codes[50] = &model.Code{ID: 50, CreatorID: 1}
	ds.CodeNames[60] = &model.CodeName{ID: 60, Name: "community", CodeID: 50, LanguageID: 1}
	ds.Annotations[70] = &model.Annotation{ID: 70, CodeID: &codeID, PostID: 200, CreatorID: 1, TopicID: 20}
	ds.Annotations[71] = &model.Annotation{ID: 71, CodeID: &codeID, PostID: 210, CreatorID: 1, TopicID: 21}
	ds.Annotations[72] = &model.Annotation{ID: 72, CodeID: &codeID, PostID: 200, CreatorID: model.SentinelUserID, TopicID: 20}

	return ds
}

func TestPolicy_Active(t *testing.T) {
	assert.False(t, Policy{}.Active())
	assert.True(t, Policy{OmitPrivateMessages: true}.Active())
	assert.True(t, Policy{OmitProtectedContent: true}.Active())
	assert.True(t, Policy{OmitSystemUsers: true}.Active())
}

func TestApply_EmptyPolicyKeepsEverything(t *testing.T) {
	ds := fixture()
	out := Apply(ds, Policy{})

	assert.Len(t, out.Users, len(ds.Users))
	assert.Len(t, out.Topics, len(ds.Topics))
	assert.Len(t, out.Posts, len(ds.Posts))
	assert.Len(t, out.Replies, len(ds.Replies))
	assert.Len(t, out.Annotations, len(ds.Annotations))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	ds := fixture()
	Apply(ds, Policy{OmitPrivateMessages: true, OmitProtectedContent: true, OmitSystemUsers: true})

	assert.Contains(t, ds.Users, model.SentinelUserID)
	assert.Contains(t, ds.Topics, int64(10))
	assert.Contains(t, ds.Posts, int64(210))
	assert.Equal(t, []int64{10, 11}, ds.Users[1].Groups)
}

func TestApply_OmitPrivateMessages(t *testing.T) {
	out := Apply(fixture(), Policy{OmitPrivateMessages: true})

	assert.NotContains(t, out.Topics, int64(10))
	assert.NotContains(t, out.Posts, int64(100))
	// Public and merely restricted content is untouched.
	assert.Contains(t, out.Topics, int64(21))
	assert.Contains(t, out.Posts, int64(210))
}

func TestApply_OmitProtectedContent(t *testing.T) {
	out := Apply(fixture(), Policy{OmitProtectedContent: true})

	assert.NotContains(t, out.Groups, int64(11))
	assert.NotContains(t, out.Categories, int64(6))
	assert.NotContains(t, out.Topics, int64(21))
	assert.NotContains(t, out.Topics, int64(10)) // message threads are restricted too
	assert.NotContains(t, out.Posts, int64(210))
	assert.NotContains(t, out.Posts, int64(211)) // hidden
	// Membership in the dropped group disappears from surviving users.
	assert.Equal(t, []int64{10}, out.Users[1].Groups)
	// Annotations on dropped posts go with them.
	assert.NotContains(t, out.Annotations, int64(71))
	assert.Contains(t, out.Annotations, int64(70))
}

func TestApply_OmitSystemUsers(t *testing.T) {
	out := Apply(fixture(), Policy{OmitSystemUsers: true})

	assert.NotContains(t, out.Users, model.SentinelUserID)
	assert.Contains(t, out.Users, int64(1))
	// Content authored by the sentinel survives; only the account goes.
	assert.Contains(t, out.Posts, int64(100))
	// Annotations created by the dropped account go with it.
	assert.NotContains(t, out.Annotations, int64(72))
	assert.Contains(t, out.Annotations, int64(70))
}

func TestApply_NoDanglingEndpoints(t *testing.T) {
	out := Apply(fixture(), Policy{OmitPrivateMessages: true, OmitProtectedContent: true, OmitSystemUsers: true})

	for _, r := range out.Replies {
		assert.Contains(t, out.Posts, r.PostID)
		assert.Contains(t, out.Posts, r.ReplyToPostID)
	}
	for _, q := range out.Quotes {
		assert.Contains(t, out.Posts, q.PostID)
		assert.Contains(t, out.Posts, q.QuotedPostID)
	}
	for _, l := range out.Likes {
		assert.Contains(t, out.Posts, l.PostID)
		assert.Contains(t, out.Users, l.UserID)
	}
	for _, p := range out.Posts {
		for _, id := range p.IsReplyTo {
			assert.Contains(t, out.Posts, id)
		}
		for _, id := range p.QuotesPosts {
			assert.Contains(t, out.Posts, id)
		}
		for _, id := range p.IsLikedBy {
			assert.Contains(t, out.Users, id)
		}
	}
	for _, a := range out.Annotations {
		assert.Contains(t, out.Posts, a.PostID)
		assert.Contains(t, out.Users, a.CreatorID)
	}

	// The reply from the hidden post is gone, the public one survives.
	require.Len(t, out.Replies, 1)
	assert.Equal(t, int64(201), out.Replies[0].PostID)
	// Edge ids are renumbered to stay dense.
	assert.Equal(t, int64(0), out.Replies[0].ID)
}

func TestApply_TagsAndCodesAlwaysKept(t *testing.T) {
	out := Apply(fixture(), Policy{OmitPrivateMessages: true, OmitProtectedContent: true, OmitSystemUsers: true})

	assert.Len(t, out.Tags, 1)
	assert.Len(t, out.Languages, 1)
	assert.Len(t, out.Codes, 1)
	assert.Len(t, out.CodeNames, 1)
}
