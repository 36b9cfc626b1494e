package server

// SubscriberDiagnostics describes one connected subscriber for /diagnostics.
type SubscriberDiagnostics struct {
	ID             string `json:"id"`
	Format         string `json:"format"`
	RemoteAddr     string `json:"remoteAddr,omitempty"`
	JoinedAt       int64  `json:"joinedAt"`
	LastHeartbeat  int64  `json:"lastHeartbeat,omitempty"`
	RTTMillis      int64  `json:"rttMillis"`
	LastCommandSeq uint64 `json:"lastCommandSeq"`
}
