package database

import (
	"log"
	"strings"
)

// GetStationAliases returns canonical station -> aliases as stored in the
// station_alias table.
func (d *DatabaseInst) GetStationAliases() (map[string][]string, error) {
	d.dbLock.Lock()
	defer d.dbLock.Unlock()

	rows, err := d.db.Query(`SELECT
			alias,
			station
		FROM station_alias ORDER BY station, alias`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	output := map[string][]string{}

	for rows.Next() {
		var alias, station string

		err := rows.Scan(&alias, &station)
		if err != nil {
			log.Println(err)
			continue
		}

		if len(strings.TrimSpace(station)) == 0 {
			log.Printf("Got station alias %q without a station\n", alias)
			continue
		}

		output[station] = append(output[station], alias)
	}

	return output, rows.Err()
}

func (d *DatabaseInst) StoreStationAlias(alias string, station string) error {
	d.dbLock.Lock()
	defer d.dbLock.Unlock()

	_, err := d.db.Exec("INSERT INTO station_alias (alias, station) VALUES (?, ?) ON CONFLICT(alias) DO UPDATE SET station = excluded.station;",
		strings.TrimSpace(alias), strings.TrimSpace(station))
	return err
}
