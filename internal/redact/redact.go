package redact

import (
	"go.uber.org/zap"

	"forumgraph/internal/model"
	"forumgraph/pkg/logger"
)

// Policy is the set of omission rules. An entity is dropped when any
// applicable rule matches.
type Policy struct {
	OmitPrivateMessages  bool
	OmitProtectedContent bool
	OmitSystemUsers      bool
}

// Active reports whether any rule is enabled.
func (p Policy) Active() bool {
	return p.OmitPrivateMessages || p.OmitProtectedContent || p.OmitSystemUsers
}

// Apply filters a normalized dataset according to the policy and returns a
// new dataset. The input is not mutated.
//
// Filtering is a closure pass in dependency order: users, groups and
// categories first, then topics and posts, then the edge records, which are
// rechecked against the already-filtered sets. Changing that order would
// leave dangling references.
func Apply(ds *model.Dataset, policy Policy) *model.Dataset {
	out := model.NewDataset(ds.Site)
	out.Stats = ds.Stats

	// Users
	for id, u := range ds.Users {
		if policy.OmitSystemUsers && id < 0 {
			continue
		}
		cp := *u
		out.Users[id] = &cp
	}

	// Groups above the logged-in visibility level are protected content.
	for id, g := range ds.Groups {
		if policy.OmitProtectedContent && g.Visibility > model.VisibilityLoggedIn {
			continue
		}
		cp := *g
		out.Groups[id] = &cp
	}

	// Categories; surviving ones keep only permissions that still point at
	// a surviving group.
	for id, c := range ds.Categories {
		if policy.OmitProtectedContent && c.ReadRestricted {
			continue
		}
		cp := *c
		cp.PermittedGroups = filterIDs(c.PermittedGroups, func(gid int64) bool {
			_, ok := out.Groups[gid]
			return ok
		})
		out.Categories[id] = &cp
	}

	// Group membership on users follows the surviving group set.
	for _, u := range out.Users {
		u.Groups = filterIDs(u.Groups, func(gid int64) bool {
			_, ok := out.Groups[gid]
			return ok
		})
	}

	// Tags are never protected or private.
	for id, t := range ds.Tags {
		cp := *t
		out.Tags[id] = &cp
	}

	// Topics
	for id, t := range ds.Topics {
		if policy.OmitPrivateMessages && t.IsMessageThread {
			continue
		}
		if policy.OmitProtectedContent && t.ReadRestricted {
			continue
		}
		cp := *t
		cp.Tags = append([]int64(nil), t.Tags...)
		out.Topics[id] = &cp
	}

	// Posts
	for id, p := range ds.Posts {
		if policy.OmitPrivateMessages && p.IsPrivate {
			continue
		}
		if policy.OmitProtectedContent && (p.ReadRestricted || p.Hidden) {
			continue
		}
		cp := *p
		out.Posts[id] = &cp
	}

	// Inline post lists track the surviving post and user sets.
	for _, p := range out.Posts {
		p.IsReplyTo = filterIDs(p.IsReplyTo, func(pid int64) bool {
			_, ok := out.Posts[pid]
			return ok
		})
		p.QuotesPosts = filterIDs(p.QuotesPosts, func(pid int64) bool {
			_, ok := out.Posts[pid]
			return ok
		})
		p.IsLikedBy = filterIDs(p.IsLikedBy, func(uid int64) bool {
			_, ok := out.Users[uid]
			return ok
		})
	}

	// Edge records survive only when both endpoints did.
	for _, r := range ds.Replies {
		if _, ok := out.Posts[r.PostID]; !ok {
			continue
		}
		if _, ok := out.Posts[r.ReplyToPostID]; !ok {
			continue
		}
		r.ID = int64(len(out.Replies))
		out.Replies = append(out.Replies, r)
	}
	for _, q := range ds.Quotes {
		if _, ok := out.Posts[q.PostID]; !ok {
			continue
		}
		if _, ok := out.Posts[q.QuotedPostID]; !ok {
			continue
		}
		q.ID = int64(len(out.Quotes))
		out.Quotes = append(out.Quotes, q)
	}
	for _, l := range ds.Likes {
		if _, ok := out.Posts[l.PostID]; !ok {
			continue
		}
		if _, ok := out.Users[l.UserID]; !ok {
			continue
		}
		l.ID = int64(len(out.Likes))
		out.Likes = append(out.Likes, l)
	}

	// The annotation layer is never redacted itself, but an annotation goes
	// with either dropped endpoint, its post or its creator.
	for id, lang := range ds.Languages {
		cp := *lang
		out.Languages[id] = &cp
	}
	for id, c := range ds.Codes {
		cp := *c
		out.Codes[id] = &cp
	}
	for id, cn := range ds.CodeNames {
		cp := *cn
		out.CodeNames[id] = &cp
	}
	for id, a := range ds.Annotations {
		if _, ok := out.Posts[a.PostID]; !ok {
			continue
		}
		if _, ok := out.Users[a.CreatorID]; !ok {
			continue
		}
		cp := *a
		out.Annotations[id] = &cp
	}

	logger.Get().Info("Redaction complete",
		zap.String("platform", ds.Site.Name),
		zap.Bool("omit_private_messages", policy.OmitPrivateMessages),
		zap.Bool("omit_protected_content", policy.OmitProtectedContent),
		zap.Bool("omit_system_users", policy.OmitSystemUsers),
		zap.Int("users_dropped", len(ds.Users)-len(out.Users)),
		zap.Int("topics_dropped", len(ds.Topics)-len(out.Topics)),
		zap.Int("posts_dropped", len(ds.Posts)-len(out.Posts)),
		zap.Int("annotations_dropped", len(ds.Annotations)-len(out.Annotations)),
	)

	return out
}

func filterIDs(ids []int64, keep func(int64) bool) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}
