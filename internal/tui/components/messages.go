package components

// CopyMsg asks the view to put Content on the clipboard.
type CopyMsg struct {
	Content string
}

// OpenHostsMsg carries the hosts the user asked to connect to.
type OpenHostsMsg struct {
	Targets []string
	SFTP    bool
}
