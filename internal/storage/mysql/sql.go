package mysql

// Schema is created in-process; the sink owns its tables and replaces them
// wholesale on every run, so there is no migration history to manage.
var createTableSQL = []string{
	`CREATE TABLE IF NOT EXISTS destinations (
  id        VARCHAR(512) NOT NULL PRIMARY KEY,
  name      VARCHAR(255) NOT NULL,
  country   VARCHAR(255) NULL,
  region    VARCHAR(255) NULL,
  arrival   TINYINT(1) NOT NULL DEFAULT 0,
  departure TINYINT(1) NOT NULL DEFAULT 0
)`,
	`CREATE TABLE IF NOT EXISTS hotels (
  id             VARCHAR(512) NOT NULL PRIMARY KEY,
  name           VARCHAR(255) NOT NULL,
  destination_id VARCHAR(512) NOT NULL,
  rating         INT NOT NULL DEFAULT 0,
  lat            DOUBLE NULL,
  lng            DOUBLE NULL,
  room_type_ids  JSON NULL,
  raw            JSON NULL
)`,
	`CREATE TABLE IF NOT EXISTS room_types (
  id         VARCHAR(700) NOT NULL PRIMARY KEY,
  hotel_id   VARCHAR(512) NOT NULL,
  name       VARCHAR(255) NOT NULL,
  capacity   INT NOT NULL DEFAULT 1,
  extra_beds INT NOT NULL DEFAULT 0,
  board      VARCHAR(255) NULL
)`,
	`CREATE TABLE IF NOT EXISTS transports (
  id        VARCHAR(700) NOT NULL PRIMARY KEY,
  mode      VARCHAR(32) NOT NULL,
  origin_id VARCHAR(512) NOT NULL,
  target_id VARCHAR(512) NOT NULL,
  carrier   VARCHAR(255) NULL,
  via       JSON NULL
)`,
	`CREATE TABLE IF NOT EXISTS tour_options (
  id             VARCHAR(700) NOT NULL PRIMARY KEY,
  destination_id VARCHAR(512) NOT NULL,
  hotel_id       VARCHAR(512) NOT NULL,
  room_type_id   VARCHAR(700) NOT NULL,
  transport_id   VARCHAR(700) NOT NULL,
  start_date     VARCHAR(10) NOT NULL,
  end_date       VARCHAR(10) NOT NULL,
  price          DOUBLE NOT NULL,
  currency       VARCHAR(8) NULL,
  raw            JSON NULL
)`,
	`CREATE TABLE IF NOT EXISTS dataset_runs (
  id           BIGINT AUTO_INCREMENT PRIMARY KEY,
  generated_at DATETIME NOT NULL,
  manifest     JSON NOT NULL,
  created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
}

const insertDestinationsPrefix = `INSERT INTO destinations
  (id, name, country, region, arrival, departure)
VALUES `

const insertHotelsPrefix = `INSERT INTO hotels
  (id, name, destination_id, rating, lat, lng, room_type_ids, raw)
VALUES `

const insertRoomTypesPrefix = `INSERT INTO room_types
  (id, hotel_id, name, capacity, extra_beds, board)
VALUES `

const insertTransportsPrefix = `INSERT INTO transports
  (id, mode, origin_id, target_id, carrier, via)
VALUES `

const insertTourOptionsPrefix = `INSERT INTO tour_options
  (id, destination_id, hotel_id, room_type_id, transport_id, start_date, end_date, price, currency, raw)
VALUES `

const insertRunSQL = `INSERT INTO dataset_runs (generated_at, manifest) VALUES (?, ?)`
