package notify

import "sync"

// Recorder keeps the topics it would have published to. Tests use it in place
// of a broker.
type Recorder struct {
	mu     sync.Mutex
	topics []string
}

func (r *Recorder) CollaboratorAssigned(scheduleID int, userIDs []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, uid := range userIDs {
		r.topics = append(r.topics, AssignedTopic(uid))
	}
}

func (r *Recorder) CommentCreated(scheduleID, commentID, authorID int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, CommentsTopic(scheduleID))
}

func (r *Recorder) Close() {}

func (r *Recorder) Topics() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}
