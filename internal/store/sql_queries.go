package store

const (
	createUser = `INSERT INTO users (user_id, email, name, phone, password_hash)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING user_id, email, name, phone, password_hash, created_at;`

	upsertUserByEmail = `INSERT INTO users (user_id, email, name, phone)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (email) DO UPDATE SET
        name  = CASE WHEN users.name  = '' THEN EXCLUDED.name  ELSE users.name  END,
        phone = CASE WHEN users.phone = '' THEN EXCLUDED.phone ELSE users.phone END
    RETURNING user_id, email, name, phone, password_hash, created_at;`

	findUserByEmail = `SELECT user_id, email, name, phone, password_hash, created_at
    FROM users
    WHERE email = $1;`

	findUserByID = `SELECT user_id, email, name, phone, password_hash, created_at
    FROM users
    WHERE user_id = $1;`

	setUserPassword = `UPDATE users
    SET password_hash = $2
    WHERE user_id = $1;`

	createSession = `INSERT INTO sessions (session_id, user_id, token_digest, expires_at)
    VALUES ($1, $2, $3, $4)
    RETURNING session_id, user_id, token_digest, expires_at, created_at, last_used_at;`

	findSessionByDigest = `SELECT session_id, user_id, token_digest, expires_at, created_at, last_used_at
    FROM sessions
    WHERE token_digest = $1;`

	touchSession = `UPDATE sessions
    SET last_used_at = NOW()
    WHERE session_id = $1;`

	deleteSessionByDigest = `DELETE FROM sessions
    WHERE token_digest = $1;`

	deleteSessionByID = `DELETE FROM sessions
    WHERE session_id = $1;`

	deleteUserSessions = `DELETE FROM sessions
    WHERE user_id = $1;`

	// pruneUserSessions removes rows already past expiry that fall outside
	// the newest-$2 retention set. Live sessions are never pruned.
	pruneUserSessions = `DELETE FROM sessions
    WHERE user_id = $1
      AND expires_at < NOW()
      AND session_id NOT IN (
          SELECT session_id FROM sessions
          WHERE user_id = $1
          ORDER BY created_at DESC
          LIMIT $2
      );`

	createSetupToken = `INSERT INTO password_setup_tokens (token_id, user_id, token_digest, expires_at)
    VALUES ($1, $2, $3, $4)
    RETURNING token_id, user_id, token_digest, expires_at, used_at, created_at;`

	// insertSetupToken is the payment-transaction variant: the caller
	// already holds every field, so nothing needs to be read back.
	insertSetupToken = `INSERT INTO password_setup_tokens (token_id, user_id, token_digest, expires_at)
    VALUES ($1, $2, $3, $4);`

	// redeemSetupToken is the atomic check-and-set: the validity check and
	// the mark-used write are one statement, so of two concurrent
	// redemptions of the same digest exactly one sees a row.
	redeemSetupToken = `UPDATE password_setup_tokens
    SET used_at = NOW()
    WHERE token_digest = $1
      AND used_at IS NULL
      AND expires_at > NOW()
    RETURNING user_id;`

	findSetupTokenByDigest = `SELECT token_id, user_id, token_digest, expires_at, used_at, created_at
    FROM password_setup_tokens
    WHERE token_digest = $1;`

	hasLiveSetupToken = `SELECT EXISTS (
        SELECT 1 FROM password_setup_tokens
        WHERE user_id = $1
          AND used_at IS NULL
          AND expires_at > NOW()
    );`

	findOrderByPaymentRef = `SELECT order_id, user_id, email, amount, currency, status, provider, payment_ref,
        COALESCE(tracking_number, ''), COALESCE(carrier, ''), created_at
    FROM orders
    WHERE payment_ref = $1;`

	createOrder = `INSERT INTO orders (order_id, user_id, email, amount, currency, status, provider, payment_ref)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING order_id, created_at;`

	upsertShippingAddress = `INSERT INTO shipping_addresses (address_id, user_id, line1, line2, city, region, postal_code, country)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    ON CONFLICT (user_id, line1, postal_code, country) DO UPDATE SET
        line2      = EXCLUDED.line2,
        city       = EXCLUDED.city,
        region     = EXCLUDED.region,
        updated_at = NOW()
    RETURNING address_id, user_id, line1, line2, city, region, postal_code, country, created_at, updated_at;`
)
