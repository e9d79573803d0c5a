package systemd

// UnitName is the installed unit file name.
const UnitName = "tegra-fqd.service"

// DaemonTemplate returns the systemd unit for running tegra-fqd on generic
// Linux Tegra boards. Android builds start the daemon from init.rc instead.
//
// The daemon needs root to write cpufreq and tegra_cap control files and
// to chown the flag directory. Exit status 0 is a requested shutdown
// (suicide marker) and must not trigger a restart.
func DaemonTemplate() string {
	return `[Unit]
Description=Tegra CPU frequency policy daemon
After=local-fs.target
ConditionPathExists=/sys/devices/system/cpu/cpu0/cpufreq

[Service]
Type=simple
ExecStart=/usr/local/bin/tegra-fqd --config /etc/tegra-fqd.yaml
Restart=on-failure
RestartSec=2
NoNewPrivileges=true
PrivateTmp=true
ProtectSystem=strict
ProtectHome=true
ReadWritePaths=/dev/tegra-fqd /data/misc/tegra-fqd
RestrictNamespaces=true
MemoryDenyWriteExecute=true

# Resource limits
CPUQuota=5%
MemoryMax=32M
TasksMax=8

[Install]
WantedBy=multi-user.target
`
}
