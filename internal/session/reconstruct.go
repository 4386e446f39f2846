package session

import (
	"sort"
	"time"

	"github.com/linnemanlabs/warden/internal/detection"
)

// Reconstruct derives presence sessions from a detection snapshot.
//
// Events with a blank entity key or zero timestamp are dropped. The
// remaining events are partitioned by entity key; within a partition events
// are ordered by (timestamp, ingestion id) so equal timestamps cannot
// produce a nondeterministic first/last pick. A session is ACTIVE iff
// now minus its last detection is within inactivityTimeout.
//
// The output is deterministic for a fixed input: sessions sorted by
// first_seen descending, ties by entity key ascending.
func Reconstruct(events []detection.Event, now time.Time, inactivityTimeout time.Duration) Result {
	partitions := make(map[string][]detection.Event)
	for _, e := range events {
		if !e.Valid() {
			continue
		}
		partitions[e.EntityKey] = append(partitions[e.EntityKey], e)
	}

	sessions := make([]Session, 0, len(partitions))
	for key, part := range partitions {
		sort.Slice(part, func(i, j int) bool {
			if !part[i].Timestamp.Equal(part[j].Timestamp) {
				return part[i].Timestamp.Before(part[j].Timestamp)
			}
			return part[i].IngestionID < part[j].IngestionID
		})

		first := part[0]
		last := part[len(part)-1]

		maxConf := part[0].Confidence
		for _, e := range part[1:] {
			if e.Confidence > maxConf {
				maxConf = e.Confidence
			}
		}

		status := StatusClosed
		if now.Sub(last.Timestamp) <= inactivityTimeout {
			status = StatusActive
		}

		sessions = append(sessions, Session{
			EntityKey:            key,
			FirstSeen:            first.Timestamp,
			LastSeen:             last.Timestamp,
			AggregateConfidence:  maxConf,
			MemberCount:          len(part),
			Status:               status,
			LatestClassification: last.Classification,
			SourceNode:           last.SourceNode,
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].FirstSeen.Equal(sessions[j].FirstSeen) {
			return sessions[i].FirstSeen.After(sessions[j].FirstSeen)
		}
		return sessions[i].EntityKey < sessions[j].EntityKey
	})

	var res Result
	for _, s := range sessions {
		if s.LatestClassification == detection.ClassGuessed {
			res.Unconfirmed = append(res.Unconfirmed, s)
			continue
		}
		res.Sessions = append(res.Sessions, s)
	}
	return res
}
