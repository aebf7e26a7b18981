package domain

// Wire codes for unit and event types published in game-event summaries.
//
// The codes below are frozen. They are part of the published artifact
// format consumed by the dashboard: append new entries with fresh codes,
// never renumber or reorder existing ones.

type UnitType int

const (
	UnitTerranMarine        UnitType = 0
	UnitTerranGhost         UnitType = 1
	UnitTerranVulture       UnitType = 2
	UnitTerranGoliath       UnitType = 3
	UnitTerranSiegeTank     UnitType = 5
	UnitTerranSCV           UnitType = 7
	UnitTerranWraith        UnitType = 8
	UnitTerranScienceVessel UnitType = 9
	UnitTerranDropship      UnitType = 11
	UnitTerranBattlecruiser UnitType = 12
	UnitTerranFirebat       UnitType = 32
	UnitTerranMedic         UnitType = 34
	UnitZergLarva           UnitType = 35
	UnitZergEgg             UnitType = 36
	UnitZergZergling        UnitType = 37
	UnitZergHydralisk       UnitType = 38
	UnitZergUltralisk       UnitType = 39
	UnitZergDrone           UnitType = 41
	UnitZergOverlord        UnitType = 42
	UnitZergMutalisk        UnitType = 43
	UnitZergGuardian        UnitType = 44
	UnitZergQueen           UnitType = 45
	UnitZergDefiler         UnitType = 46
	UnitZergScourge         UnitType = 47
	UnitZergLurker          UnitType = 48
	UnitProtossCorsair      UnitType = 60
	UnitProtossDarkTemplar  UnitType = 61
	UnitProtossDarkArchon   UnitType = 63
	UnitProtossProbe        UnitType = 64
	UnitProtossZealot       UnitType = 65
	UnitProtossDragoon      UnitType = 66
	UnitProtossHighTemplar  UnitType = 67
	UnitProtossArchon       UnitType = 68
	UnitProtossShuttle      UnitType = 69
	UnitProtossScout        UnitType = 70
	UnitProtossArbiter      UnitType = 71
	UnitProtossCarrier      UnitType = 72
	UnitProtossInterceptor  UnitType = 73
	UnitProtossReaver       UnitType = 83
	UnitProtossObserver     UnitType = 84
)

type UnitEventType int

const (
	UnitEventCreate  UnitEventType = 1
	UnitEventDestroy UnitEventType = 2
	UnitEventMorph   UnitEventType = 3
	UnitEventShow    UnitEventType = 4
	UnitEventHide    UnitEventType = 5
)
