// Package idlookup maps numeric uid/gid values to account/group names,
// grounded on the froster Python original's uid2user/gid2group (os
// lookup, falling back to the numeric id string when unresolvable).
package idlookup

import (
	"os/user"
	"strconv"
)

// User returns the username for uid, or its decimal string if unresolvable.
func User(uid uint32) string {
	u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10))
	if err != nil {
		return strconv.FormatUint(uint64(uid), 10)
	}

	return u.Username
}

// Group returns the group name for gid, or its decimal string if unresolvable.
func Group(gid uint32) string {
	g, err := user.LookupGroupId(strconv.FormatUint(uint64(gid), 10))
	if err != nil {
		return strconv.FormatUint(uint64(gid), 10)
	}

	return g.Name
}
