package ir

// Version is the rowcook release version.
const Version = "0.1.0"
