package lqvault

import (
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var validID = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

const columns = `tx_id, vout, asset, amount, script, lockup, spent, timeout`

// VaultSQLiteStorage implements VaultUTXOStorage for SQLite
type VaultSQLiteStorage struct {
	uniqueTableID string
	db            *sql.DB
}

// NewVaultSQLiteStorage creates a new SQLiteStorage
// dbFilePath is the path to the SQLite database file.
// Each uniqueID (usually the address) gets its own table.
func NewVaultSQLiteStorage(dbFilePath string, uniqueID string) (*VaultSQLiteStorage, error) {
	if !validID.MatchString(uniqueID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, uniqueID)
	}
	db, err := sql.Open("sqlite3", dbFilePath)
	if err != nil {
		return nil, err
	}

	storage := &VaultSQLiteStorage{db: db, uniqueTableID: "vault_utxo_" + uniqueID}
	if err := storage.init(); err != nil {
		db.Close()
		return nil, err
	}

	return storage, nil
}

// init creates the table and its indexes if not existed before.
func (s *VaultSQLiteStorage) init() error {
	query := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		tx_id TEXT,
		vout INTEGER,
		asset TEXT,
		amount INTEGER,
		script BLOB,
		lockup BOOLEAN,
		spent BOOLEAN,
		timeout INTEGER,
		PRIMARY KEY (tx_id, vout)
	);
	CREATE INDEX IF NOT EXISTS idx_%[1]s_asset ON %[1]s (asset);
	`, s.uniqueTableID)
	_, err := s.db.Exec(query)
	return err
}

func (s *VaultSQLiteStorage) Close() error {
	return s.db.Close()
}

// InsertVaultUTXO inserts a new VaultUTXO into the database
func (s *VaultSQLiteStorage) InsertVaultUTXO(u VaultUTXO) error {
	query := fmt.Sprintf(`
	INSERT INTO %s (%s)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, s.uniqueTableID, columns)
	_, err := s.db.Exec(query, u.TxID, u.Vout, u.Asset, int64(u.Amount), u.Script, u.Lockup, u.Spent, u.Timeout)
	return err
}

func scanRows(rows *sql.Rows) ([]VaultUTXO, error) {
	defer rows.Close()

	var utxos []VaultUTXO
	for rows.Next() {
		var u VaultUTXO
		var amount int64
		if err := rows.Scan(&u.TxID, &u.Vout, &u.Asset, &amount, &u.Script, &u.Lockup, &u.Spent, &u.Timeout); err != nil {
			return nil, err
		}
		u.Amount = uint64(amount)
		utxos = append(utxos, u)
	}
	return utxos, rows.Err()
}

// QueryByTxIDAndVout retrieves a VaultUTXO with the specified transaction ID and vout
func (s *VaultSQLiteStorage) QueryByTxIDAndVout(txID string, vout uint32) (*VaultUTXO, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM %s
	WHERE tx_id = ? AND vout = ?;
	`, columns, s.uniqueTableID)
	rows, err := s.db.Query(query, txID, vout)
	if err != nil {
		return nil, err
	}
	utxos, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, nil // No matching UTXO found
	}
	return &utxos[0], nil
}

func (s *VaultSQLiteStorage) QueryAllUnspentUTXOs() ([]VaultUTXO, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM %s
	WHERE spent = 0
	ORDER BY rowid;
	`, columns, s.uniqueTableID)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// QueryUsableByAsset keeps insertion order so selection follows
// the order outputs were first seen.
func (s *VaultSQLiteStorage) QueryUsableByAsset(asset string) ([]VaultUTXO, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM %s
	WHERE lockup = 0 AND spent = 0 AND asset = ?
	ORDER BY rowid;
	`, columns, s.uniqueTableID)
	rows, err := s.db.Query(query, asset)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

// QueryExpiredAndLockedUTXOs retrieves UTXOs whose lockup status is true and have expired
// t is the unix timepoint in seconds.
// all UTXOs with timeout < t are considered as expired.
func (s *VaultSQLiteStorage) QueryExpiredAndLockedUTXOs(t int64) ([]VaultUTXO, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM %s
	WHERE lockup = 1 AND spent = 0 AND timeout < ?;
	`, columns, s.uniqueTableID)
	rows, err := s.db.Query(query, t)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (s *VaultSQLiteStorage) SetLockup(txID string, vout uint32, lockup bool, timeout int64) error {
	query := fmt.Sprintf(`
	UPDATE %s
	SET lockup = ?, timeout = ?
	WHERE tx_id = ? AND vout = ?;
	`, s.uniqueTableID)
	_, err := s.db.Exec(query, lockup, timeout, txID, vout)
	return err
}

func (s *VaultSQLiteStorage) SetSpent(txID string, vout uint32, spent bool) error {
	query := fmt.Sprintf(`
	UPDATE %s
	SET spent = ?
	WHERE tx_id = ? AND vout = ?;
	`, s.uniqueTableID)
	_, err := s.db.Exec(query, spent, txID, vout)
	return err
}

// SumByAsset only counts the unspent & not locked up UTXOs.
func (s *VaultSQLiteStorage) SumByAsset() (map[string]uint64, error) {
	query := fmt.Sprintf(`
	SELECT asset, COALESCE(SUM(amount), 0)
	FROM %s
	WHERE lockup = 0 AND spent = 0
	GROUP BY asset;
	`, s.uniqueTableID)
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sums := make(map[string]uint64)
	for rows.Next() {
		var asset string
		var total int64
		if err := rows.Scan(&asset, &total); err != nil {
			return nil, err
		}
		sums[asset] = uint64(total)
	}
	return sums, rows.Err()
}
