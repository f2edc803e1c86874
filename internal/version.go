package internal

// Version is the current version of all session-android-service
// command-line tools and executables.
const Version = "0.1.0"
