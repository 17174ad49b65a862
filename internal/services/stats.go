package services

import (
	"github.com/jmoiron/sqlx"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

type UserStats struct {
	Total    int `db:"total"`
	Verified int `db:"verified"`
	Pending  int `db:"pending"`
}

type ResourceStats struct {
	Total    int `db:"total"`
	Approved int `db:"approved"`
	Pending  int `db:"pending"`
	Rejected int `db:"rejected"`
}

type CategoryStats struct {
	Total    int `db:"total"`
	Active   int `db:"active"`
	Inactive int `db:"inactive"`
}

type CategoryCount struct {
	Name  string `db:"category_name"`
	Count int    `db:"count"`
}

type HostStats struct {
	MemoryTotalBytes uint64
	MemoryUsedBytes  uint64
	DiskTotalBytes   uint64
	DiskUsedBytes    uint64
}

type SystemStats struct {
	Users           UserStats
	Resources       ResourceStats
	Categories      CategoryStats
	TopCategories   []CategoryCount
	RecentUsers     int
	RecentResources int
	Host            HostStats
}

// CollectStats builds the admin dashboard: entity counts from the store plus
// host memory and disk usage for the volume holding the store file.
func CollectStats(handle *sqlx.DB, diskPath string) (*SystemStats, error) {
	stats := &SystemStats{}
	err := handle.Get(&stats.Users, `
SELECT COUNT(*) AS total,
       COALESCE(SUM(CASE WHEN is_verified = 1 THEN 1 ELSE 0 END), 0) AS verified,
       COALESCE(SUM(CASE WHEN is_verified = 0 THEN 1 ELSE 0 END), 0) AS pending
FROM users WHERE role = 'user' OR role IS NULL
`)
	if err != nil {
		return nil, WrapError(err, "user statistics")
	}
	err = handle.Get(&stats.Resources, `
SELECT COUNT(*) AS total,
       COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
       COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected
FROM resources
`)
	if err != nil {
		return nil, WrapError(err, "resource statistics")
	}
	err = handle.Get(&stats.Categories, `
SELECT COUNT(*) AS total,
       COALESCE(SUM(CASE WHEN is_active = 1 THEN 1 ELSE 0 END), 0) AS active,
       COALESCE(SUM(CASE WHEN is_active = 0 THEN 1 ELSE 0 END), 0) AS inactive
FROM categories
`)
	if err != nil {
		return nil, WrapError(err, "category statistics")
	}
	err = handle.Select(&stats.TopCategories, `
SELECT category_name, COUNT(*) AS count
FROM resources
WHERE status = 'approved' AND category_name IS NOT NULL
GROUP BY category_name
ORDER BY count DESC
LIMIT 5
`)
	if err != nil {
		return nil, WrapError(err, "top categories")
	}
	if err := handle.Get(&stats.RecentUsers, `
SELECT COUNT(*) FROM users WHERE join_date >= datetime('now', '-7 days')
`); err != nil {
		return nil, WrapError(err, "recent users")
	}
	if err := handle.Get(&stats.RecentResources, `
SELECT COUNT(*) FROM resources WHERE upload_date >= datetime('now', '-7 days')
`); err != nil {
		return nil, WrapError(err, "recent resources")
	}

	if memStat, err := mem.VirtualMemory(); err == nil {
		stats.Host.MemoryTotalBytes = memStat.Total
		stats.Host.MemoryUsedBytes = memStat.Total - memStat.Available
	}
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, err = disk.Usage("/")
	}
	if err == nil {
		stats.Host.DiskTotalBytes = diskStat.Total
		stats.Host.DiskUsedBytes = diskStat.Used
	}
	return stats, nil
}
