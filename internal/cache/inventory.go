package cache

import (
	"context"
	"fmt"
	"time"
)

// Key formats. Every Redis key the service writes is listed here.
const (
	UserKeyPrefix          = "user:%d"
	UnreadCountsKeyPrefix  = "user:%d:unread"
	ProjectKeyPrefix       = "project:%s"
	StatsKey               = "stats:global"
	WSTicketKeyPrefix      = "ws_ticket:%s"
	NotificationChannelFmt = "notifications:user:%d"
	NotificationChannelAll = "notifications:user:*"
)

const (
	UserTTL         = 5 * time.Minute
	UnreadCountsTTL = 30 * time.Second
	ProjectTTL      = 2 * time.Minute
	StatsTTL        = time.Minute
	WSTicketTTL     = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UnreadCountsKey(userID uint) string {
	return fmt.Sprintf(UnreadCountsKeyPrefix, userID)
}

func ProjectKey(slug string) string {
	return fmt.Sprintf(ProjectKeyPrefix, slug)
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketKeyPrefix, ticket)
}


// NotificationChannel is the pub/sub channel for one user's realtime events.
func NotificationChannel(userID uint) string {
	return fmt.Sprintf(NotificationChannelFmt, userID)
}

// Invalidate deletes key. It is a no-op without Redis.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID), UnreadCountsKey(userID))
}

func InvalidateUnread(ctx context.Context, userIDs ...uint) {
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, UnreadCountsKey(id))
	}
	Invalidate(ctx, keys...)
}

func InvalidateProject(ctx context.Context, slug string) {
	Invalidate(ctx, ProjectKey(slug), StatsKey)
}
