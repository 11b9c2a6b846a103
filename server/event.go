package server

type NotificationKind string

const (
	NOTIFICATION_MATCH_LIST_UPDATED NotificationKind = "match_list_updated"
	NOTIFICATION_ROSTER_UPDATED NotificationKind = "roster_updated"
	NOTIFICATION_MATCH_STARTED NotificationKind = "match_started"
	NOTIFICATION_MATCH_START_FAILED NotificationKind = "match_start_failed"
	NOTIFICATION_ROUND_STARTED NotificationKind = "round_started"
	NOTIFICATION_ACTION_REJECTED NotificationKind = "action_rejected"
	NOTIFICATION_ACTION_RESOLVED NotificationKind = "action_resolved"
	NOTIFICATION_ROLE_GRANTED NotificationKind = "role_granted"
	NOTIFICATION_ROLE_REVOKED NotificationKind = "role_revoked"
	NOTIFICATION_PARTICIPANT_ELIMINATED NotificationKind = "participant_eliminated"
	NOTIFICATION_MATCH_OVER NotificationKind = "match_over"
	NOTIFICATION_KICKED NotificationKind = "kicked"
	NOTIFICATION_REJOINED NotificationKind = "rejoined"
)

const (
	OUTCOME_COVERED = "covered"
	OUTCOME_RELOADED = "reloaded"
	OUTCOME_HIT = "hit"
	OUTCOME_BLOCKED = "blocked"
	OUTCOME_COVER_BROKEN = "cover_broken"
	OUTCOME_ABSORBED = "absorbed"
	OUTCOME_NO_AMMO = "no_ammo"
	OUTCOME_INVALID_TARGET = "invalid_target"
	OUTCOME_ALREADY_ELIMINATED = "already_eliminated"
)

type ActionOutcome struct {
	ActorID string `json:"actor_id"`
	Kind ActionKind `json:"kind"`
	TargetID string `json:"target_id,omitempty"`
	Outcome string `json:"outcome"`
	Killed bool `json:"killed,omitempty"`
}

type RoundSummary struct {
	Round int `json:"round"`
	Actions []ActionOutcome `json:"actions"`
}

//Notification is the outbound message produced by games for UI, audio and logging collaborators
type Notification struct {
	Kind NotificationKind `json:"kind"`
	MatchID string `json:"match_id,omitempty"`
	//Mode of the changed list in match list updates, empty for every mode
	Mode string `json:"mode,omitempty"`
	Round int `json:"round,omitempty"`
	//Milliseconds of collection budget in round started notifications
	Duration int64 `json:"duration,omitempty"`
	Deadline int64 `json:"deadline,omitempty"`
	AdminID string `json:"admin_id,omitempty"`
	ParticipantID string `json:"participant_id,omitempty"`
	KillerID string `json:"killer_id,omitempty"`
	WinnerID string `json:"winner_id,omitempty"`
	Draw bool `json:"draw,omitempty"`
	IsFullHeal bool `json:"is_full_heal,omitempty"`
	Reason string `json:"reason,omitempty"`
	Summary *RoundSummary `json:"summary,omitempty"`
	Match *MatchSummary `json:"match,omitempty"`
}
