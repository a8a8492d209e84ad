package query

var setMembership = []*Definition{
	{
		Label:   "List patients who have appointments with doctors specializing in CARDIOLOGY",
		Columns: []string{"PatientID", "FirstName", "LastName"},
		SQL: `SELECT DISTINCT p.PatientID, p.FirstName, p.LastName
FROM Patient p
WHERE p.PatientID IN (
    SELECT a.PatientID
    FROM Appointment a
    JOIN Doctor d ON a.DoctorID = d.DoctorID
    WHERE d.DepartmentID = (
        SELECT DepartmentID FROM Department WHERE DepartmentName = 'CARDIOLOGY'
    )
)`,
	},
	{
		Label:   "Find Doctors Who Specialize in Digestive and Renal Health",
		Columns: []string{"DoctorID", "FirstName", "LastName"},
		SQL: `SELECT DoctorID, FirstName, LastName
FROM Doctor
WHERE DepartmentID IN (
    SELECT DepartmentID FROM Department
    WHERE DepartmentName IN ('GASTROENTEROLOGY', 'NEPHROLOGY', 'UROLOGY')
)`,
	},
	{
		Label:   "List Nurses Who Have Worked in ICU Rooms",
		Columns: []string{"NurseID", "FirstName", "LastName"},
		SQL: `SELECT DISTINCT n.NurseID, n.FirstName, n.LastName
FROM Nurse n
WHERE n.NurseID IN (
    SELECT hs.AssignedNurseID
    FROM HospitalStay hs
    JOIN Room r ON hs.RoomID = r.RoomID
    WHERE r.RoomType = 'ICU'
)`,
	},
	{
		Label:   "List Patients with Appointments in Multiple Departments",
		Columns: []string{"PatientID", "PatientName"},
		SQL: `SELECT DISTINCT
    p.PatientID,
    CONCAT(p.FirstName, ' ', p.LastName) AS PatientName
FROM Patient p
WHERE EXISTS (
    SELECT 1
    FROM Appointment a1
    INNER JOIN Doctor d1 USING (DoctorID)
    WHERE p.PatientID = a1.PatientID
      AND d1.DepartmentID != (
          SELECT d2.DepartmentID
          FROM Appointment a2
          INNER JOIN Doctor d2 USING (DoctorID)
          WHERE p.PatientID = a2.PatientID
          LIMIT 1
      )
)`,
	},
	{
		Label:   "List Doctors with No Appointments in a Specific Month",
		Columns: []string{"DoctorID", "DoctorName"},
		SQL: `SELECT doc.DoctorID, CONCAT(doc.FirstName, ' ', doc.LastName) AS DoctorName
FROM Doctor doc
WHERE NOT EXISTS (
    SELECT 1
    FROM Appointment a
    WHERE a.DoctorID = doc.DoctorID
      AND a.AppointmentDate BETWEEN '2024-10-01' AND '2024-10-30'
)`,
	},
}
