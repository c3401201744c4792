package postgres

const (
	queryGetReaction = `
		SELECT id, message_id, owner_type, owner_id, reaction, created_at
		FROM message_reactions
		WHERE id = $1 AND message_id = $2`
	queryCountReactions = `SELECT COUNT(*) FROM message_reactions WHERE message_id = $1`
	queryReactionExists = `
		SELECT EXISTS(
			SELECT 1 FROM message_reactions
			WHERE message_id = $1 AND owner_type = $2 AND owner_id = $3 AND reaction = $4
		)`
	queryUniqueReactions = `SELECT DISTINCT reaction FROM message_reactions WHERE message_id = $1`
	queryListReactions   = `
		SELECT id, message_id, owner_type, owner_id, reaction, created_at
		FROM message_reactions
		WHERE message_id = $1
		  AND (
		    $2::timestamptz IS NULL
		    OR created_at < $2
		    OR (created_at = $2 AND id::text < $3)
		  )
		ORDER BY created_at DESC, id DESC
		LIMIT $4`
	queryCreateReaction = `
		INSERT INTO message_reactions (id, message_id, owner_type, owner_id, reaction, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	queryDeleteReaction = `DELETE FROM message_reactions WHERE id = $1`

	queryGetMessage = `
		SELECT id, thread_id, owner_type, owner_id, type, body, reacted, created_at
		FROM messages
		WHERE id = $1 AND thread_id = $2`
	queryMarkReacted = `UPDATE messages SET reacted = TRUE WHERE id = $1 AND NOT reacted`
	// флаг снимается только если реакций действительно не осталось
	queryClearReactedIfEmpty = `
		UPDATE messages SET reacted = FALSE
		WHERE id = $1
		  AND reacted
		  AND NOT EXISTS (SELECT 1 FROM message_reactions WHERE message_id = $1)`

	queryGetParticipant = `
		SELECT id, thread_id, owner_type, owner_id, admin, created_at, deleted_at
		FROM participants
		WHERE thread_id = $1 AND owner_type = $2 AND owner_id = $3 AND deleted_at IS NULL
		ORDER BY created_at DESC
		LIMIT 1`
	queryParticipantExists = `
		SELECT EXISTS(
			SELECT 1 FROM participants
			WHERE thread_id = $1 AND owner_type = $2 AND owner_id = $3 AND deleted_at IS NULL
		)`

	queryGetCall = `
		SELECT id, thread_id, owner_type, owner_id, type, created_at, call_ended
		FROM calls
		WHERE id = $1 AND thread_id = $2`
	queryCurrentCallParticipant = `
		SELECT id, call_id, owner_type, owner_id, created_at, left_call_at
		FROM call_participants
		WHERE call_id = $1 AND owner_type = $2 AND owner_id = $3
		ORDER BY created_at DESC
		LIMIT 1`
	queryMarkLeftCall      = `UPDATE call_participants SET left_call_at = $2 WHERE id = $1 AND left_call_at IS NULL`
	queryCountActiveInCall = `SELECT COUNT(*) FROM call_participants WHERE call_id = $1 AND left_call_at IS NULL`
	queryEndCall           = `UPDATE calls SET call_ended = $2 WHERE id = $1 AND call_ended IS NULL`

	queryUpsertStatus = `
		INSERT INTO provider_statuses (owner_type, owner_id, away, last_seen, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_type, owner_id)
		DO UPDATE SET away = EXCLUDED.away, last_seen = EXCLUDED.last_seen, updated_at = EXCLUDED.updated_at`
	queryTouchStatus = `UPDATE provider_statuses SET last_seen = $3 WHERE owner_type = $1 AND owner_id = $2`
	queryGetStatus   = `
		SELECT owner_type, owner_id, away, last_seen, updated_at
		FROM provider_statuses
		WHERE owner_type = $1 AND owner_id = $2`

	queryGetUser = `SELECT id::text, display_name, avatar_url FROM users WHERE id::text = $1`
	queryGetBot  = `SELECT id::text, name, avatar_url FROM bots WHERE id::text = $1`
)
