package repository

// The derived relations are built per statement as CTEs so concurrent
// requests never share intermediate state.

const joinedIntersectionsCTE = `
WITH joined_intersections AS (
	SELECT
		l.name,
		l.latitude,
		l.longitude,
		c.num_collisions,
		t.north,
		t.south,
		t.east,
		t.west
	FROM location l
	LEFT JOIN collision c ON c.name = l.name
	LEFT JOIN traffic_volume t ON t.name = l.name
)`

// danger rows exist only for intersections with a positive total traffic.
const dangerCTE = `
WITH total_traffic_volume AS (
	SELECT
		name,
		north::bigint + south::bigint + east::bigint + west::bigint AS total_traffic
	FROM traffic_volume
),
total_collision AS (
	SELECT
		l.name,
		COALESCE(c.num_collisions, 0) AS num_collisions
	FROM location l
	LEFT JOIN collision c ON c.name = l.name
),
danger AS (
	SELECT
		tc.name,
		tc.num_collisions,
		tv.total_traffic,
		tc.num_collisions::float8 / tv.total_traffic::float8 AS danger_ratio
	FROM total_collision tc
	JOIN total_traffic_volume tv ON tv.name = tc.name
	WHERE tv.total_traffic IS NOT NULL AND tv.total_traffic > 0
)`

const (
	listIntersectionsQuery = joinedIntersectionsCTE + `
SELECT name, latitude, longitude, num_collisions, north, south, east, west
FROM joined_intersections
ORDER BY name`

	getIntersectionQuery = joinedIntersectionsCTE + `
SELECT name, latitude, longitude, num_collisions, north, south, east, west
FROM joined_intersections
WHERE name = $1`

	intersectionsWithinRangeQuery = joinedIntersectionsCTE + `
SELECT name, latitude, longitude, num_collisions, north, south, east, west
FROM joined_intersections
WHERE latitude BETWEEN $1 AND $2
	AND longitude BETWEEN $3 AND $4
ORDER BY name`

	intersectionsWithStreetQuery = joinedIntersectionsCTE + `
SELECT name, latitude, longitude, num_collisions, north, south, east, west
FROM joined_intersections
WHERE name ILIKE '%' || $1 || '%' ESCAPE '\'
ORDER BY name`

	addIntersectionQuery = `
INSERT INTO location (name, latitude, longitude)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO NOTHING`

	compareIntersectionsQuery = dangerCTE + `
SELECT name, num_collisions, total_traffic, danger_ratio
FROM danger
WHERE name = $1 OR name = $2
ORDER BY name`

	topDangerousQuery = dangerCTE + `
SELECT name, num_collisions, total_traffic, danger_ratio
FROM danger
ORDER BY danger_ratio DESC, name
LIMIT $1`

	setCollisionsQuery = `
INSERT INTO collision (name, num_collisions)
VALUES ($1, $2)
ON CONFLICT (name) DO UPDATE SET num_collisions = EXCLUDED.num_collisions
RETURNING num_collisions`

	incrementCollisionsQuery = `
INSERT INTO collision (name, num_collisions)
VALUES ($1, 1)
ON CONFLICT (name) DO UPDATE SET num_collisions = collision.num_collisions + 1
RETURNING num_collisions`
)
