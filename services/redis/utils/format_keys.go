package utils

/**
 * This file contains utility functions to format the keys for Redis
 * (key, value) pairs. It avoids having to call "fmt.Sprintf(...)"
 * with the same format spec every time, potentially confusing the key format.
 */

import "strings"

const roomKeyPrefix = "room:"

func FormatRoomKey(roomID string) string {
	return roomKeyPrefix + roomID
}

func RoomIDFromKey(key string) string {
	return strings.TrimPrefix(key, roomKeyPrefix)
}
